package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	v := GenerateCodeVerifier()

	// 32 bytes base64url-encoded without padding.
	require.Len(t, v, 43)
	for _, r := range v {
		ok := r == '-' || r == '_' ||
			(r >= 'A' && r <= 'Z') ||
			(r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9')
		require.True(t, ok, "verifier contains non-URL-safe rune %q", r)
	}

	assert.NotEqual(t, v, GenerateCodeVerifier(), "verifiers must not repeat")
}

func TestChallengeOf(t *testing.T) {
	// RFC 7636 appendix B reference pair.
	const verifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	const challenge = "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	assert.Equal(t, challenge, ChallengeOf(verifier))

	// Deterministic, and distinct inputs produce distinct challenges.
	assert.Equal(t, ChallengeOf(verifier), ChallengeOf(verifier))
	assert.NotEqual(t, ChallengeOf(verifier), ChallengeOf(verifier+"x"))
}
