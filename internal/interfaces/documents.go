package interfaces

import (
	"context"

	"github.com/Jitesh17/docai/internal/models"
)

// DocumentRegistry owns document identity on the client: the authoritative
// list of persisted documents plus the extracted contents of the latest
// upload batch.
type DocumentRegistry interface {
	// Refresh replaces the registry from the backend's listing endpoint.
	// The replacement is atomic; readers never observe partial state. A
	// result that arrives after an endpoint toggle is discarded.
	Refresh(ctx context.Context) ([]models.PersistedDocument, error)

	// ApplyUploadResult replaces the extracted contents wholesale, then
	// refreshes so newly persisted documents appear in Documents().
	ApplyUploadResult(ctx context.Context, contents []string) error

	// Remove deletes the given documents server-side, drops them from the
	// registry, and reconciles the selection. Fails with
	// models.ErrNoSelection when ids is empty.
	Remove(ctx context.Context, ids []string) error

	// Documents returns a copy of the current persisted document list.
	Documents() []models.PersistedDocument

	// ExtractedContents returns a copy of the latest batch's contents, in
	// upload order.
	ExtractedContents() []string

	// Clear drops all session-scoped registry state (sign-out teardown).
	Clear()
}

// SelectionTracker holds the set of document ids marked for the next AI
// request. It references ids by value only; dangling ids are tolerated
// until the next registry reconciliation.
type SelectionTracker interface {
	// SetSelection replaces the selection wholesale.
	SetSelection(ids []string)

	// RemoveIDs drops the given ids from the selection (delete side
	// effect).
	RemoveIDs(ids []string)

	// IDs returns a copy of the selected ids.
	IDs() []string

	Clear()
}

// UploadPipeline packages a batch of raw files into one multipart request
// and returns the extracted contents in upload order.
type UploadPipeline interface {
	// Upload sends all files together in a single request. It fails before
	// any network call with models.ErrUnauthenticated when signed out and
	// models.ErrNoFilesSelected on an empty batch, and with models.ErrBusy
	// while another upload is in flight.
	Upload(ctx context.Context, files []UploadFile) ([]string, error)

	// Busy reports whether an upload is in flight, so callers can disable
	// repeat submission.
	Busy() bool
}

// UploadFile is one raw file in an upload batch.
type UploadFile struct {
	Name    string
	Content []byte
}
