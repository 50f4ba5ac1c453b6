package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

// Provider implements the IdentityProvider capability against the Google
// Identity Toolkit REST API, the provider the DocAI backend verifies bearer
// tokens against.
//
// Only the long-lived refresh token is persisted (via AuthStorage). ID
// tokens are minted fresh on every ObtainCredential call and never cached:
// a token may expire between two calls, and the backend rejects stale ones.
type Provider struct {
	client      *http.Client
	authURL     string
	tokenURL    string
	apiKey      string
	authStorage interfaces.AuthStorage
	logger      arbor.ILogger

	mu           sync.RWMutex
	identity     *models.Identity
	refreshToken string
}

// NewProvider creates an identity provider client. Stored credentials, when
// present, restore the previous sign-in; a failed restore leaves the client
// signed out without error.
func NewProvider(config *common.AuthConfig, authStorage interfaces.AuthStorage, logger arbor.ILogger) *Provider {
	p := &Provider{
		client:      &http.Client{Timeout: 30 * time.Second},
		authURL:     strings.TrimRight(config.AuthURL, "/"),
		tokenURL:    strings.TrimRight(config.TokenURL, "/"),
		apiKey:      config.APIKey,
		authStorage: authStorage,
		logger:      logger,
	}

	if err := p.restore(); err != nil {
		logger.Debug().Str("error", err.Error()).Msg("No stored sign-in to restore")
	}

	return p
}

func (p *Provider) restore() error {
	if p.authStorage == nil {
		return fmt.Errorf("no auth storage configured")
	}

	credentials, err := p.authStorage.GetCredentials(context.Background())
	if err != nil {
		return err
	}
	if credentials == nil || credentials.RefreshToken == "" {
		return fmt.Errorf("no stored credentials")
	}

	p.mu.Lock()
	p.refreshToken = credentials.RefreshToken
	p.identity = &models.Identity{
		UID:   credentials.UID,
		Email: credentials.Email,
	}
	p.mu.Unlock()

	p.logger.Info().Str("email", credentials.Email).Msg("Restored previous sign-in")
	return nil
}

// accountResponse is the sign-in/sign-up wire shape
type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

// providerError is the Identity Toolkit error envelope
type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn authenticates with email and password
func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	return p.account(ctx, "accounts:signInWithPassword", email, password)
}

// SignUp creates a new account and signs it in
func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return p.account(ctx, "accounts:signUp", email, password)
}

func (p *Provider) account(ctx context.Context, action, email, password string) (*models.Identity, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/%s?key=%s", p.authURL, action, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr providerError
		if json.Unmarshal(payload, &perr) == nil && perr.Error.Message != "" {
			return nil, fmt.Errorf("sign-in rejected: %s", perr.Error.Message)
		}
		return nil, fmt.Errorf("sign-in rejected: status %d", resp.StatusCode)
	}

	var account accountResponse
	if err := json.Unmarshal(payload, &account); err != nil {
		return nil, fmt.Errorf("malformed provider response: %w", err)
	}

	identity := &models.Identity{
		UID:         account.LocalID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
	}

	p.mu.Lock()
	p.identity = identity
	p.refreshToken = account.RefreshToken
	p.mu.Unlock()

	p.persist(identity, account.RefreshToken)

	p.logger.Info().Str("email", identity.Email).Msg("Signed in")
	return identity, nil
}

func (p *Provider) persist(identity *models.Identity, refreshToken string) {
	if p.authStorage == nil {
		return
	}
	err := p.authStorage.StoreCredentials(context.Background(), &models.AuthCredentials{
		UID:          identity.UID,
		Email:        identity.Email,
		RefreshToken: refreshToken,
		UpdatedAt:    time.Now().Unix(),
	})
	if err != nil {
		p.logger.Warn().Str("error", err.Error()).Msg("Failed to persist credentials")
	}
}

// SignOut clears the current identity and the persisted refresh token
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.identity = nil
	p.refreshToken = ""
	p.mu.Unlock()

	if p.authStorage != nil {
		if err := p.authStorage.DeleteCredentials(context.Background()); err != nil {
			p.logger.Warn().Str("error", err.Error()).Msg("Failed to delete stored credentials")
		}
	}

	p.logger.Info().Msg("Signed out")
}

// CurrentIdentity returns the signed-in identity, or nil
func (p *Provider) CurrentIdentity() *models.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return nil
	}
	copy := *p.identity
	return &copy
}

// tokenResponse is the secure-token endpoint wire shape
type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// ObtainCredential exchanges the refresh token for a fresh ID token. Every
// call is a new exchange; the ID token is returned to the caller and
// forgotten.
func (p *Provider) ObtainCredential(ctx context.Context) (models.Credential, error) {
	p.mu.RLock()
	refreshToken := p.refreshToken
	signedIn := p.identity != nil
	p.mu.RUnlock()

	if !signedIn || refreshToken == "" {
		return "", models.ErrUnauthenticated
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/v1/token?key=%s", p.tokenURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var perr providerError
		if json.Unmarshal(payload, &perr) == nil && perr.Error.Message != "" {
			return "", fmt.Errorf("token refresh rejected: %s", perr.Error.Message)
		}
		return "", fmt.Errorf("token refresh rejected: status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(payload, &token); err != nil {
		return "", fmt.Errorf("malformed token response: %w", err)
	}
	if token.IDToken == "" {
		return "", fmt.Errorf("token response missing id_token")
	}

	p.applyTokenClaims(token)

	return models.Credential(token.IDToken), nil
}

// applyTokenClaims updates identity fields and a rotated refresh token from
// the minted ID token. Claims are decoded without signature verification;
// the backend, not this client, is the verifier.
func (p *Provider) applyTokenClaims(token tokenResponse) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.IDToken, claims); err != nil {
		p.logger.Debug().Str("error", err.Error()).Msg("Could not decode token claims")
		return
	}

	p.mu.Lock()
	rotated := token.RefreshToken != "" && token.RefreshToken != p.refreshToken
	if rotated {
		p.refreshToken = token.RefreshToken
	}
	if p.identity != nil {
		if uid, ok := claims["user_id"].(string); ok && uid != "" {
			p.identity.UID = uid
		}
		if email, ok := claims["email"].(string); ok && email != "" {
			p.identity.Email = email
		}
	}
	identity := p.identity
	refreshToken := p.refreshToken
	p.mu.Unlock()

	if rotated && identity != nil {
		p.persist(identity, refreshToken)
	}
}

var _ interfaces.IdentityProvider = (*Provider)(nil)
