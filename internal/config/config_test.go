package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.False(t, cfg.Google.Configured())
	assert.False(t, cfg.Keycloak.Configured())
}

func TestLoadProviderBlocks(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://id.example.com")
	t.Setenv("GOOGLE_ISSUER", "https://accounts.google.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_ALLOW_REGISTRATION", "true")
	t.Setenv("GOOGLE_EXTRA_AUTH_PARAMS", "hd:example.com,access_type:online")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "https://id.example.com", cfg.PublicBaseURL)

	require.True(t, cfg.Google.Configured())
	assert.Equal(t, "https://accounts.google.com", cfg.Google.Issuer)
	assert.True(t, cfg.Google.AllowRegistration)
	assert.Equal(t, map[string]string{
		"hd":          "example.com",
		"access_type": "online",
	}, cfg.Google.ExtraAuthParams)

	// the keycloak block stays untouched by google env vars
	assert.False(t, cfg.Keycloak.Configured())
}
