package oidc

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testProvider is a minimal OIDC issuer served over httptest: discovery,
// JWKS, the code exchange, the refresh grant and optionally userinfo.
// Knobs are plain fields; set them before the first driver operation.
type testProvider struct {
	t   *testing.T
	srv *httptest.Server
	key *rsa.PrivateKey

	clientID string

	mu            sync.Mutex
	discoveryHits int

	// discovery knobs
	responseTypes []string
	withUserInfo  bool

	// code exchange knobs
	code           string
	expectVerifier string
	idClaims       map[string]any
	userInfoClaims map[string]any
	refreshToken   string // refresh token returned by the code exchange

	// refresh grant knobs
	storedRefresh  string // refresh token the grant accepts
	rotatedRefresh string // new refresh token returned, "" for none

	tokenErr *tokenError
}

type tokenError struct {
	status      int
	code        string
	description string
}

func newTestProvider(t *testing.T) *testProvider {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate test key: %v", err)
	}

	tp := &testProvider{
		t:             t,
		key:           key,
		clientID:      "test-client",
		responseTypes: []string{"code"},
		code:          "test-code",
		idClaims: map[string]any{
			"sub":            "subject-1",
			"email":          "subject-1@example.com",
			"email_verified": true,
			"given_name":     "First",
			"family_name":    "Last",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", tp.handleDiscovery)
	mux.HandleFunc("/keys", tp.handleJWKS)
	mux.HandleFunc("/token", tp.handleToken)
	mux.HandleFunc("/userinfo", tp.handleUserInfo)

	tp.srv = httptest.NewServer(mux)
	t.Cleanup(tp.srv.Close)

	return tp
}

func (tp *testProvider) issuer() string {
	return tp.srv.URL
}

func (tp *testProvider) discoveryCount() int {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.discoveryHits
}

func (tp *testProvider) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	tp.mu.Lock()
	tp.discoveryHits++
	tp.mu.Unlock()

	doc := map[string]any{
		"issuer":                                tp.srv.URL,
		"authorization_endpoint":                tp.srv.URL + "/authorize",
		"token_endpoint":                        tp.srv.URL + "/token",
		"jwks_uri":                              tp.srv.URL + "/keys",
		"response_types_supported":              tp.responseTypes,
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	}
	if tp.withUserInfo {
		doc["userinfo_endpoint"] = tp.srv.URL + "/userinfo"
	}
	writeJSON(w, http.StatusOK, doc)
}

func (tp *testProvider) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := tp.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": "test-key",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   "AQAB",
		}},
	})
}

func (tp *testProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	if tp.tokenErr != nil {
		writeJSON(w, tp.tokenErr.status, map[string]any{
			"error":             tp.tokenErr.code,
			"error_description": tp.tokenErr.description,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_request"})
		return
	}

	switch r.Form.Get("grant_type") {
	case "authorization_code":
		if r.Form.Get("code") != tp.code {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			return
		}
		if tp.expectVerifier != "" && r.Form.Get("code_verifier") != tp.expectVerifier {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			return
		}

		resp := map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     tp.signIDToken(),
		}
		if tp.refreshToken != "" {
			resp["refresh_token"] = tp.refreshToken
		}
		writeJSON(w, http.StatusOK, resp)

	case "refresh_token":
		if r.Form.Get("refresh_token") != tp.storedRefresh {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
			return
		}

		resp := map[string]any{
			"access_token": "refreshed-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		if tp.rotatedRefresh != "" {
			resp["refresh_token"] = tp.rotatedRefresh
		}
		writeJSON(w, http.StatusOK, resp)

	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
	}
}

func (tp *testProvider) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid_token"})
		return
	}
	writeJSON(w, http.StatusOK, tp.userInfoClaims)
}

func (tp *testProvider) signIDToken() string {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": tp.srv.URL,
		"aud": tp.clientID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range tp.idClaims {
		claims[k] = v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"

	signed, err := token.SignedString(tp.key)
	if err != nil {
		tp.t.Fatalf("sign id_token: %v", err)
	}
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
