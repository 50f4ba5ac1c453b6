package interfaces

import (
	"context"

	"github.com/Jitesh17/docai/internal/models"
)

// IdentityProvider is the injected capability over the external auth
// provider. The orchestration core never touches the provider's wire
// protocol directly, which keeps it substitutable with a fake in tests.
type IdentityProvider interface {
	// SignIn authenticates with email/password and becomes the current
	// identity on success.
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)

	// SignUp creates an account and signs it in.
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)

	// SignOut clears the current identity and any persisted provider state.
	SignOut()

	// CurrentIdentity returns the signed-in identity, or nil.
	CurrentIdentity() *models.Identity

	// ObtainCredential mints a fresh bearer token. Implementations must not
	// cache tokens across calls; each call is a new exchange with the
	// provider.
	ObtainCredential(ctx context.Context) (models.Credential, error)
}
