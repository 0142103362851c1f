package auth

import "encoding/json"

// AuthData is the strategy-owned JSON stored in an account's auth_data
// column. The refresh token is the only field this system writes;
// unknown fields from other writers are dropped on rewrite.
type AuthData struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// EncodeAuthData serializes a refresh token for storage.
func EncodeAuthData(refreshToken string) string {
	b, _ := json.Marshal(AuthData{RefreshToken: refreshToken})
	return string(b)
}

// DecodeAuthData parses stored auth data. An empty value decodes to the
// zero AuthData; malformed JSON is returned as an error so callers can
// log and continue without a refresh token.
func DecodeAuthData(raw string) (AuthData, error) {
	var d AuthData
	if raw == "" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return AuthData{}, err
	}
	return d, nil
}
