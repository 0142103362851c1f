package handler

import (
	"net/http"
	"time"
)

// The code verifier rides a short-lived cookie across the redirect
// round-trip; the server keeps no per-login state.
const (
	pkceCookieName = "__oauth_pkce"
	pkceTTL        = 5 * time.Minute
)

func setVerifierCookie(w http.ResponseWriter, verifier string) {
	http.SetCookie(w, &http.Cookie{
		Name:     pkceCookieName,
		Value:    verifier,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(pkceTTL.Seconds()),
	})
}

func verifierFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func clearVerifierCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     pkceCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
