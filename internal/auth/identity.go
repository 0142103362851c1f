package auth

// Claims is the set of assertions a provider makes about the
// authenticated subject. Values are the JSON primitives produced by
// decoding an ID token or userinfo response: string, bool, float64 or
// nil. Anything else is opaque to this package.
type Claims map[string]any

// String returns the named claim if it is a string, "" otherwise.
func (c Claims) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// Bool returns the named claim if it is a boolean, false otherwise.
func (c Claims) Bool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

// TokenSet is the result of a code or refresh exchange. Ephemeral; only
// the refresh token (when present) outlives the login attempt, stored
// as auth data on the account.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	Claims       Claims
}

// Identity represents a normalized external authentication identity
// returned by an auth provider. It contains facts only, no decisions.
type Identity struct {
	Provider     string // e.g. "google", "keycloak"
	Identifier   string // canonical external identifier (identifier claim or email)
	Claims       Claims
	AccessToken  string
	RefreshToken string
}
