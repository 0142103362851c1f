package oidc

import (
	"fmt"
	"strings"

	"idgate/internal/auth"
)

const defaultScope = "openid profile email"

// Config describes one OIDC provider. Immutable after the driver is
// constructed.
type Config struct {
	// Name is the unique provider key; it appears in the redirect URL
	// and in every diagnostic trace.
	Name string

	IssuerURL    string
	ClientID     string
	ClientSecret string

	// Scope is the space-separated scope string requested on the
	// authorization redirect. Empty means defaultScope.
	Scope string

	// IdentifierClaim names the claim used as the external identifier,
	// falling back to email when the claim is absent. Empty means "sub".
	IdentifierClaim string

	// DefaultRoleID is assigned to accounts provisioned by this provider.
	DefaultRoleID string

	AllowRegistration    bool
	RequireVerifiedEmail bool

	// ExtraAuthParams are provider-specific authorization parameters.
	// They may override the default scope, access_type and prompt but
	// never the PKCE challenge fields or state.
	ExtraAuthParams map[string]string
}

func (c Config) validate() error {
	if c.Name == "" || c.IssuerURL == "" || c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf(
			"%w: name, issuer url, client id and client secret are required",
			auth.ErrInvalidConfig,
		)
	}
	return nil
}

func (c Config) scopes() []string {
	scope := c.Scope
	if scope == "" {
		scope = defaultScope
	}
	return strings.Fields(scope)
}

func (c Config) identifierClaim() string {
	if c.IdentifierClaim == "" {
		return "sub"
	}
	return c.IdentifierClaim
}
