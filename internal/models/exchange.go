package models

import "time"

// Exchange is one completed AI request/response pair kept in the local
// history store. It is device-scoped: it survives sign-out and never holds
// credentials.
type Exchange struct {
	ID          string    `json:"id"` // exch_<uuid>
	Provider    Provider  `json:"provider"`
	Prompt      string    `json:"prompt"`
	DocumentIDs []string  `json:"document_ids"`
	Response    string    `json:"response"`
	Endpoint    string    `json:"endpoint"` // base URL the request was sent to
	CreatedAt   time.Time `json:"created_at"`
}
