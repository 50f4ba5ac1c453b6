package models

// Identity represents the signed-in user as reported by the identity
// provider. A nil *Identity means signed out.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Credential is a short-lived bearer token. It is obtained freshly before
// every authenticated call and never reused across calls, because it may
// expire between them.
type Credential string

// AuthCredentials is the provider state persisted locally so the client
// stays signed in across invocations. Only the long-lived refresh token is
// stored; short-lived ID tokens are never written to disk.
type AuthCredentials struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	RefreshToken string `json:"refresh_token"`
	UpdatedAt    int64  `json:"updated_at"`
}
