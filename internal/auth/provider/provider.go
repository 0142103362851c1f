package provider

import (
	"context"

	"idgate/internal/user"
)

// CallbackPayload is what the HTTP layer extracts from the callback
// request: the authorization code and state from the query, the code
// verifier from wherever the caller parked it across the redirect.
type CallbackPayload struct {
	Code         string
	State        string
	CodeVerifier string
}

// Driver is the contract every redirect-based auth strategy exposes to
// the host. Implementations return a local account id and must not
// perform session management.
type Driver interface {
	// Name returns the provider identifier (e.g. "google", "keycloak").
	Name() string

	// GenerateCodeVerifier returns a fresh PKCE code verifier. The
	// caller must retain it across the redirect round-trip.
	GenerateCodeVerifier() string

	// GenerateAuthURL builds the authorization URL for the verifier.
	// promptConsent forces the provider's consent screen, used when
	// retrying after a rejected grant.
	GenerateAuthURL(ctx context.Context, verifier string, promptConsent bool) (string, error)

	// GetUserID exchanges the callback payload for tokens and resolves
	// the authenticated identity to a local account id.
	GetUserID(ctx context.Context, payload CallbackPayload) (string, error)

	// Login refreshes the account's provider tokens. It is an alias
	// for Refresh: a login against an already-linked account is a
	// silent token refresh.
	Login(ctx context.Context, account *user.Account) error

	// Refresh exchanges the account's stored refresh token for a new
	// token pair, persisting the rotation.
	Refresh(ctx context.Context, account *user.Account) error
}
