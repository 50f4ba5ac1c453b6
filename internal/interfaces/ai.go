package interfaces

import (
	"context"

	"github.com/Jitesh17/docai/internal/models"
)

// Dispatcher composes and dispatches AI requests and classifies the
// outcome. Preconditions are checked in order and short-circuit before any
// network call.
type Dispatcher interface {
	// Submit returns the AI response text on success, or one of the
	// classified errors: models.ErrUnauthenticated,
	// models.ErrNoContentSource, models.ErrBusy, or *models.AIRequestError.
	Submit(ctx context.Context, draft models.AIRequestDraft) (string, error)

	// Busy reports whether a submit is in flight.
	Busy() bool
}
