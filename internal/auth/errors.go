package auth

import "errors"

// Domain error taxonomy shared by all auth strategies. Callers match
// with errors.Is; strategies wrap these with %w to attach detail.
var (
	// ErrInvalidConfig means a provider is misconfigured. Raised at
	// driver construction or discovery time; an operator problem, not
	// an end-user one.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrInvalidCredentials is a plain authentication failure: missing
	// callback parameters, missing identity claim, or an unknown
	// identity with registration disabled.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken means the provider rejected the grant (expired,
	// reused or revoked code/refresh token). Callers may retry the
	// flow once with forced re-consent.
	ErrInvalidToken = errors.New("invalid token")

	// ErrServiceUnavailable is a provider-side outage or unexpected
	// response. Retryable infrastructure failure.
	ErrServiceUnavailable = errors.New("auth provider unavailable")
)
