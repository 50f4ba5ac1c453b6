package models

// NoContentSentinel is stored as the sole extracted entry when the server
// reports an upload produced no content, so callers always have something
// to display.
const NoContentSentinel = "no content extracted"

// PersistedDocument represents a document the backend has persisted for the
// signed-in user. The JSON tags follow the backend's wire names.
type PersistedDocument struct {
	ID   string `json:"_id"`
	Name string `json:"documentName"`
}
