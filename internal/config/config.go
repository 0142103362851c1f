package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// OIDCProvider is one provider block, loaded from prefixed environment
// variables (e.g. GOOGLE_ISSUER, KEYCLOAK_CLIENT_ID). A block with an
// empty client id is treated as not configured.
type OIDCProvider struct {
	Issuer       string `env:"ISSUER"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`

	// Scope is the space-separated scope string. Empty means the
	// driver default ("openid profile email").
	Scope string `env:"SCOPE"`

	// IdentifierClaim names the claim used as the external identifier.
	// Empty means "sub".
	IdentifierClaim string `env:"IDENTIFIER_CLAIM"`

	DefaultRoleID        string `env:"DEFAULT_ROLE_ID"`
	AllowRegistration    bool   `env:"ALLOW_REGISTRATION"`
	RequireVerifiedEmail bool   `env:"REQUIRE_VERIFIED_EMAIL"`

	// ExtraAuthParams are provider-specific authorization parameters,
	// e.g. "hd:example.com,audience:api". Merged into the auth URL.
	ExtraAuthParams map[string]string `env:"EXTRA_AUTH_PARAMS" envSeparator:"," envKeyValSeparator:":"`
}

// Configured reports whether the block carries enough to build a driver.
func (p OIDCProvider) Configured() bool {
	return p.ClientID != ""
}

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	// PublicBaseURL is the externally reachable base URL of this
	// service; redirect URLs are derived from it.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	Google   OIDCProvider `envPrefix:"GOOGLE_"`
	Keycloak OIDCProvider `envPrefix:"KEYCLOAK_"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
