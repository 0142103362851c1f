package resolver

import (
	"context"
	"fmt"

	"idgate/internal/auth"
)

// Policy is the per-provider account provisioning policy.
type Policy struct {
	// AllowRegistration permits creating an account for an identity
	// with no existing local match.
	AllowRegistration bool

	// RequireVerifiedEmail additionally gates registration on the
	// provider asserting email_verified.
	RequireVerifiedEmail bool

	// DefaultRoleID is assigned to newly provisioned accounts.
	DefaultRoleID string
}

// Resolver determines which local account an external identity belongs
// to. It is the ONLY place where identity-to-account mapping lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity, policy Policy) (userID string, err error)
}

// ExternalIdentifier derives the canonical identifier from claims: the
// configured identifier claim (default "sub"), falling back to email.
func ExternalIdentifier(claims auth.Claims, identifierClaim string) (string, error) {
	if identifierClaim == "" {
		identifierClaim = "sub"
	}

	id := claims.String(identifierClaim)
	if id == "" {
		id = claims.String("email")
	}
	if id == "" {
		return "", fmt.Errorf(
			"%w: claims carry neither %q nor email",
			auth.ErrInvalidCredentials, identifierClaim,
		)
	}

	return id, nil
}
