package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

// Service is the session manager: it fronts the identity provider for the
// rest of the client and owns the sign-out teardown of session-scoped
// state. Documents fetched under one identity are never shown to another.
type Service struct {
	provider interfaces.IdentityProvider
	logger   arbor.ILogger

	mu    sync.Mutex
	hooks []func()
}

// NewService creates a session manager over the given identity provider
func NewService(provider interfaces.IdentityProvider, logger arbor.ILogger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// CurrentIdentity returns the signed-in identity, or nil
func (s *Service) CurrentIdentity() *models.Identity {
	return s.provider.CurrentIdentity()
}

// ObtainCredential requests a fresh bearer token from the provider. The
// token is handed to exactly one call and never reused.
func (s *Service) ObtainCredential(ctx context.Context) (models.Credential, error) {
	if s.provider.CurrentIdentity() == nil {
		return "", models.ErrUnauthenticated
	}

	credential, err := s.provider.ObtainCredential(ctx)
	if err != nil {
		if err == models.ErrUnauthenticated {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", models.ErrCredentialFetch, err)
	}
	return credential, nil
}

// SignIn authenticates and becomes the current identity
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.provider.SignIn(ctx, email, password)
}

// SignUp creates an account and signs it in
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.provider.SignUp(ctx, email, password)
}

// SignOut ends the session and runs the registered teardown hooks, in
// registration order.
func (s *Service) SignOut() {
	s.provider.SignOut()

	s.mu.Lock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	s.logger.Debug().Int("hooks", len(hooks)).Msg("Session-scoped state discarded")
}

// OnSignOut registers a teardown hook
func (s *Service) OnSignOut(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

var _ interfaces.SessionManager = (*Service)(nil)
