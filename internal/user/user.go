package user

import "context"

// Account is a local user account as the auth strategies see it.
type Account struct {
	ID                 string
	Email              string
	EmailVerified      bool
	FirstName          string
	LastName           string
	RoleID             string
	Provider           string // auth strategy that provisioned the account
	ExternalIdentifier string
	AuthData           string // opaque JSON owned by the provisioning strategy
}

// NewAccount is a candidate account, assembled from provider claims and
// possibly rewritten by an augmentation hook before creation.
type NewAccount struct {
	Email              string
	EmailVerified      bool
	FirstName          string
	LastName           string
	RoleID             string
	Provider           string
	ExternalIdentifier string
	AuthData           string
}

// Store is the account storage capability shared by all auth
// strategies. Lookup by external identifier is case-insensitive;
// absence is reported as (nil, nil), not an error.
type Store interface {
	FindByExternalIdentifier(ctx context.Context, identifier string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, acc NewAccount) (string, error)
	UpdateAuthData(ctx context.Context, id string, authData string) error
}
