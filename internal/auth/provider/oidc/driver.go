// Package oidc implements the authorization-code-with-PKCE login
// strategy against any OpenID Connect provider. Discovery, the token
// exchange and ID-token verification are delegated to coreos/go-oidc
// and golang.org/x/oauth2; this package owns the flow, the identity
// resolution onto local accounts and the refresh-token lifecycle.
package oidc

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"idgate/internal/auth"
	"idgate/internal/auth/provider"
	"idgate/internal/auth/resolver"
)

// AuthDataStore is the slice of account storage the refresh engine
// needs: overwrite the stored auth data of one account.
type AuthDataStore interface {
	UpdateAuthData(ctx context.Context, id string, authData string) error
}

// Driver is a configured OIDC provider. One protocol client is built
// per driver, lazily, on first use; a construction failure poisons the
// driver until it is reconstructed.
type Driver struct {
	cfg         Config
	redirectURL string
	resolver    resolver.Resolver
	store       AuthDataStore

	once   sync.Once
	client *protocolClient
	err    error
}

// New validates the provider configuration and returns a driver bound
// to {publicBaseURL}/auth/login/{name}/callback. No network I/O happens
// here; discovery runs once on first use.
func New(
	cfg Config,
	publicBaseURL string,
	res resolver.Resolver,
	store AuthDataStore,
) (*Driver, error) {

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if publicBaseURL == "" {
		return nil, fmt.Errorf("%w: public base url is required", auth.ErrInvalidConfig)
	}

	redirectURL := strings.TrimSuffix(publicBaseURL, "/") +
		"/auth/login/" + cfg.Name + "/callback"

	return &Driver{
		cfg:         cfg,
		redirectURL: redirectURL,
		resolver:    res,
		store:       store,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (d *Driver) Name() string {
	return d.cfg.Name
}

// GenerateCodeVerifier returns a fresh PKCE code verifier.
func (d *Driver) GenerateCodeVerifier() string {
	return GenerateCodeVerifier()
}

// GenerateAuthURL builds the authorization redirect URL for the given
// verifier. promptConsent forces the provider consent screen.
func (d *Driver) GenerateAuthURL(
	ctx context.Context,
	verifier string,
	promptConsent bool,
) (string, error) {

	if verifier == "" {
		return "", fmt.Errorf("%w: missing code verifier", auth.ErrInvalidCredentials)
	}

	client, err := d.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	return authCodeURL(client, d.cfg.ExtraAuthParams, verifier, promptConsent), nil
}

// GetUserID runs the second leg of the flow: code exchange, claim
// collection and resolution to a local account id.
func (d *Driver) GetUserID(
	ctx context.Context,
	payload provider.CallbackPayload,
) (string, error) {

	// Terminal precondition, checked before any network call.
	if payload.Code == "" || payload.CodeVerifier == "" {
		return "", fmt.Errorf(
			"%w: callback is missing code or code verifier",
			auth.ErrInvalidCredentials,
		)
	}

	client, err := d.ensureClient(ctx)
	if err != nil {
		return "", err
	}

	tokens, err := d.exchange(ctx, client, payload)
	if err != nil {
		return "", err
	}

	identifier, err := resolver.ExternalIdentifier(tokens.Claims, d.cfg.identifierClaim())
	if err != nil {
		return "", err
	}

	identity := &auth.Identity{
		Provider:     d.cfg.Name,
		Identifier:   identifier,
		Claims:       tokens.Claims,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}

	return d.resolver.Resolve(ctx, identity, resolver.Policy{
		AllowRegistration:    d.cfg.AllowRegistration,
		RequireVerifiedEmail: d.cfg.RequireVerifiedEmail,
		DefaultRoleID:        d.cfg.DefaultRoleID,
	})
}
