package oidc

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/oauth2"
)

func staticClient(scopes ...string) *protocolClient {
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}
	return &protocolClient{
		oauth: &oauth2.Config{
			ClientID:    "test-client",
			RedirectURL: "https://app.example.com/auth/login/test/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://idp.example.com/authorize",
				TokenURL: "https://idp.example.com/token",
			},
			Scopes: scopes,
		},
	}
}

func parseQuery(t *testing.T, rawURL string) url.Values {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u.Query()
}

func TestAuthCodeURL(t *testing.T) {
	verifier := GenerateCodeVerifier()
	q := parseQuery(t, authCodeURL(staticClient(), nil, verifier, false))

	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, ChallengeOf(verifier), q.Get("code_challenge"))
	assert.Equal(t, q.Get("code_challenge"), q.Get("state"),
		"state doubles as the challenge")
	assert.Empty(t, q.Get("prompt"))
}

func TestAuthCodeURLPromptConsent(t *testing.T) {
	q := parseQuery(t, authCodeURL(staticClient(), nil, GenerateCodeVerifier(), true))
	assert.Equal(t, "consent", q.Get("prompt"))
}

func TestAuthCodeURLExtraParams(t *testing.T) {
	verifier := GenerateCodeVerifier()
	extra := map[string]string{
		"hd":     "example.com",
		"prompt": "login", // extras override the defaults below them
	}

	q := parseQuery(t, authCodeURL(staticClient(), extra, verifier, true))

	assert.Equal(t, "example.com", q.Get("hd"))
	assert.Equal(t, "login", q.Get("prompt"))
}

func TestAuthCodeURLExtraParamsCannotOverrideChallenge(t *testing.T) {
	verifier := GenerateCodeVerifier()
	extra := map[string]string{
		"code_challenge":        "forged",
		"code_challenge_method": "plain",
		"state":                 "forged",
	}

	q := parseQuery(t, authCodeURL(staticClient(), extra, verifier, false))

	assert.Equal(t, ChallengeOf(verifier), q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, ChallengeOf(verifier), q.Get("state"))
}
