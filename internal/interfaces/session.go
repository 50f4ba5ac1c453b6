package interfaces

import (
	"context"

	"github.com/Jitesh17/docai/internal/models"
)

// SessionManager tracks the current authenticated identity and hands out
// fresh credentials for authenticated calls. A transition to signed-out
// tears down all session-scoped state via the registered hooks.
type SessionManager interface {
	CurrentIdentity() *models.Identity

	// ObtainCredential fails with models.ErrUnauthenticated when signed
	// out and wraps provider failures as models.ErrCredentialFetch.
	ObtainCredential(ctx context.Context) (models.Credential, error)

	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut()

	// OnSignOut registers a teardown hook invoked whenever the session
	// ends. Fetched documents are scoped to the identity that fetched
	// them, so dependents clear themselves here.
	OnSignOut(hook func())
}
