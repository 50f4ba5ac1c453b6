package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the classified outcomes every operation recovers to.
// Nothing in the client is allowed to crash the session; callers match with
// errors.Is and surface a single user-facing message.
var (
	// ErrUnauthenticated: an authenticated operation was attempted with no
	// identity present.
	ErrUnauthenticated = errors.New("you must sign in first")

	// ErrCredentialFetch: identity present but the provider could not mint
	// a fresh token.
	ErrCredentialFetch = errors.New("could not obtain an access token")

	// Local precondition violations. Surfaced without any network call.
	ErrNoFilesSelected = errors.New("no files selected for upload")
	ErrNoSelection     = errors.New("no documents selected")
	ErrNoContentSource = errors.New("select at least one document to send")

	// ErrExtractionFailed: the upload call failed or returned malformed
	// data. Prior extracted content is preserved.
	ErrExtractionFailed = errors.New("document extraction failed")

	// ErrDeleteFailed: the delete call failed; registry and selection are
	// unchanged.
	ErrDeleteFailed = errors.New("document deletion failed")

	// ErrBusy: another upload or submit is already in flight. The busy
	// flag is advisory for UIs, but the pipeline rejects rather than races.
	ErrBusy = errors.New("another request is already in progress")
)

// AIFailureKind distinguishes the three submit failure classes that must be
// surfaced differently.
type AIFailureKind string

const (
	// AIFailureServer: the backend answered with an error status.
	AIFailureServer AIFailureKind = "server"
	// AIFailureNoResponse: the request went out but no response arrived.
	AIFailureNoResponse AIFailureKind = "no_response"
	// AIFailureSend: the request could not be constructed or sent locally.
	AIFailureSend AIFailureKind = "send"
)

// AIRequestError is the classified outcome of a failed submit.
type AIRequestError struct {
	Kind       AIFailureKind
	StatusCode int    // set for AIFailureServer
	Message    string // provider-supplied message, when present
	Err        error  // underlying cause, when any
}

func (e *AIRequestError) Error() string {
	switch e.Kind {
	case AIFailureServer:
		if e.Message != "" {
			return fmt.Sprintf("ai request failed: status %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("ai request failed: status %d", e.StatusCode)
	case AIFailureNoResponse:
		return "ai request failed: no response from server"
	default:
		return "ai request failed: request could not be sent"
	}
}

func (e *AIRequestError) Unwrap() error {
	return e.Err
}
