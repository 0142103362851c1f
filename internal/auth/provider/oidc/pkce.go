package oidc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// 32 random bytes encode to a 43-character verifier, inside the 43-128
// range RFC 7636 requires for the S256 method.
const codeVerifierBytes = 32

// GenerateCodeVerifier returns a new URL-safe PKCE code verifier.
func GenerateCodeVerifier() string {
	b := make([]byte, codeVerifierBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// ChallengeOf derives the S256 code challenge for a verifier. Pure and
// deterministic: the same verifier always yields the same challenge,
// which is how the callback re-verifies state without a session store.
func ChallengeOf(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
