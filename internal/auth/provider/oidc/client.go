package oidc

import (
	"context"
	"fmt"
	"slices"

	"idgate/internal/auth"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// protocolClient is the discovered issuer metadata bound to the
// registered client credentials and the fixed redirect URL. Read-only
// after construction; shared by all concurrent login attempts.
type protocolClient struct {
	provider    *gooidc.Provider
	oauth       *oauth2.Config
	verifier    *gooidc.IDTokenVerifier
	userInfoURL string
}

// ensureClient performs discovery at most once. Concurrent callers
// block on the same construction; its outcome, success or failure, is
// what every later operation sees.
func (d *Driver) ensureClient(ctx context.Context) (*protocolClient, error) {
	d.once.Do(func() {
		d.client, d.err = d.buildClient(ctx)
	})
	if d.err != nil {
		return nil, d.err
	}
	return d.client, nil
}

func (d *Driver) buildClient(ctx context.Context) (*protocolClient, error) {
	issuer, err := gooidc.NewProvider(ctx, d.cfg.IssuerURL)
	if err != nil {
		return nil, d.translate(fmt.Errorf("discovery against %s failed: %w", d.cfg.IssuerURL, err))
	}

	var meta struct {
		ResponseTypes []string `json:"response_types_supported"`
		UserInfoURL   string   `json:"userinfo_endpoint"`
	}
	if err := issuer.Claims(&meta); err != nil {
		return nil, fmt.Errorf("%w: malformed discovery document: %v", auth.ErrInvalidCredentials, err)
	}

	if !slices.Contains(meta.ResponseTypes, "code") {
		return nil, fmt.Errorf(
			"%w: issuer %s does not support the authorization code response type",
			auth.ErrInvalidConfig, d.cfg.IssuerURL,
		)
	}

	return &protocolClient{
		provider: issuer,
		oauth: &oauth2.Config{
			ClientID:     d.cfg.ClientID,
			ClientSecret: d.cfg.ClientSecret,
			RedirectURL:  d.redirectURL,
			Endpoint:     issuer.Endpoint(),
			Scopes:       d.cfg.scopes(),
		},
		verifier:    issuer.Verifier(&gooidc.Config{ClientID: d.cfg.ClientID}),
		userInfoURL: meta.UserInfoURL,
	}, nil
}
