package resolver

import (
	"context"
	"fmt"

	"idgate/internal/auth"
	"idgate/internal/logger"
	"idgate/internal/user"
)

// AugmentContext is passed to the augmentation hook alongside the
// candidate account.
type AugmentContext struct {
	Identifier  string
	Provider    string
	AccessToken string
}

// AugmentFunc may transform a candidate account before it is created.
// The hook's output, not the original candidate, is what gets
// persisted; it may rewrite any field, including the identifier.
type AugmentFunc func(ctx context.Context, candidate user.NewAccount, meta AugmentContext) (user.NewAccount, error)

// StoreResolver resolves identities against the account store,
// provisioning new accounts when the provider policy allows it.
type StoreResolver struct {
	store   user.Store
	augment AugmentFunc
}

func NewStoreResolver(store user.Store, augment AugmentFunc) *StoreResolver {
	if augment == nil {
		augment = func(_ context.Context, c user.NewAccount, _ AugmentContext) (user.NewAccount, error) {
			return c, nil
		}
	}
	return &StoreResolver{store: store, augment: augment}
}

func (r *StoreResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
	policy Policy,
) (string, error) {

	if identity == nil || identity.Identifier == "" {
		return "", fmt.Errorf("%w: missing external identifier", auth.ErrInvalidCredentials)
	}

	// 1. Existing account: persist the rotated refresh token, touch
	// nothing else. Profile fields are never overwritten on login.
	acc, err := r.store.FindByExternalIdentifier(ctx, identity.Identifier)
	if err != nil {
		return "", err
	}

	if acc != nil {
		if identity.RefreshToken != "" {
			data := auth.EncodeAuthData(identity.RefreshToken)
			if err := r.store.UpdateAuthData(ctx, acc.ID, data); err != nil {
				return "", err
			}
		}
		return acc.ID, nil
	}

	// 2. Unknown identity: registration gating.
	if !policy.AllowRegistration {
		return "", fmt.Errorf(
			"%w: unknown identity %q and registration is disabled",
			auth.ErrInvalidCredentials, identity.Identifier,
		)
	}
	if policy.RequireVerifiedEmail && !identity.Claims.Bool("email_verified") {
		return "", fmt.Errorf(
			"%w: provider did not assert a verified email for %q",
			auth.ErrInvalidCredentials, identity.Identifier,
		)
	}

	candidate := user.NewAccount{
		Email:              identity.Claims.String("email"),
		EmailVerified:      identity.Claims.Bool("email_verified"),
		FirstName:          identity.Claims.String("given_name"),
		LastName:           identity.Claims.String("family_name"),
		RoleID:             policy.DefaultRoleID,
		Provider:           identity.Provider,
		ExternalIdentifier: identity.Identifier,
	}
	if identity.RefreshToken != "" {
		candidate.AuthData = auth.EncodeAuthData(identity.RefreshToken)
	}

	candidate, err = r.augment(ctx, candidate, AugmentContext{
		Identifier:  identity.Identifier,
		Provider:    identity.Provider,
		AccessToken: identity.AccessToken,
	})
	if err != nil {
		return "", err
	}

	if _, err := r.store.Create(ctx, candidate); err != nil {
		return "", err
	}

	logger.Info("provisioned account for external identity", map[string]any{
		"provider":   identity.Provider,
		"identifier": candidate.ExternalIdentifier,
	})

	// Re-resolve by the candidate's identifier: the hook may have
	// rewritten it, so the created row is looked up, not assumed.
	acc, err = r.store.FindByExternalIdentifier(ctx, candidate.ExternalIdentifier)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", fmt.Errorf(
			"account %q not found after creation", candidate.ExternalIdentifier,
		)
	}

	return acc.ID, nil
}
