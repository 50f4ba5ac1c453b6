package app

import "github.com/Jitesh17/docai/internal/models"

// Phase is the client's lifecycle phase. Exactly one phase is active at a
// time; transitions are pure functions on State so they can be reasoned
// about and tested without any service wiring.
type Phase string

const (
	PhaseSignedOut  Phase = "signed_out"
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseSubmitting Phase = "submitting"
)

// State is an immutable snapshot of the client lifecycle. Transition
// methods return a new State and never mutate the receiver.
type State struct {
	Phase     Phase
	LastError string // message of the most recent failed operation, "" when none
}

// InitialState returns the starting state for a client, depending on
// whether a previous sign-in was restored from storage.
func InitialState(signedIn bool) State {
	if signedIn {
		return State{Phase: PhaseIdle}
	}
	return State{Phase: PhaseSignedOut}
}

// SignedIn transitions to idle after a successful sign-in or sign-up
func (s State) SignedIn() (State, error) {
	if s.Phase != PhaseSignedOut {
		return s, models.ErrBusy
	}
	return State{Phase: PhaseIdle}, nil
}

// SignedOut transitions to signed-out from any phase. Sign-out always wins:
// in-flight work against the old identity is discarded on completion.
func (s State) SignedOut() State {
	return State{Phase: PhaseSignedOut}
}

// BeginUpload transitions idle to uploading. A second upload while one is
// in flight is rejected rather than queued.
func (s State) BeginUpload() (State, error) {
	switch s.Phase {
	case PhaseSignedOut:
		return s, models.ErrUnauthenticated
	case PhaseIdle:
		return State{Phase: PhaseUploading}, nil
	default:
		return s, models.ErrBusy
	}
}

// FinishUpload transitions uploading back to idle, recording the outcome
func (s State) FinishUpload(err error) State {
	return s.finish(PhaseUploading, err)
}

// BeginSubmit transitions idle to submitting. Upload and submit are
// mutually exclusive: both need exclusive use of the session credential
// flow and the document state they read.
func (s State) BeginSubmit() (State, error) {
	switch s.Phase {
	case PhaseSignedOut:
		return s, models.ErrUnauthenticated
	case PhaseIdle:
		return State{Phase: PhaseSubmitting}, nil
	default:
		return s, models.ErrBusy
	}
}

// FinishSubmit transitions submitting back to idle, recording the outcome
func (s State) FinishSubmit(err error) State {
	return s.finish(PhaseSubmitting, err)
}

func (s State) finish(from Phase, err error) State {
	if s.Phase != from {
		// A sign-out raced the operation; the signed-out state stands.
		return s
	}
	next := State{Phase: PhaseIdle}
	if err != nil {
		next.LastError = err.Error()
	}
	return next
}

// Busy reports whether an operation is in flight
func (s State) Busy() bool {
	return s.Phase == PhaseUploading || s.Phase == PhaseSubmitting
}
