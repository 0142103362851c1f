package resolver

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"idgate/internal/auth"
	"idgate/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory account store with the same contract as
// the SQL one: case-insensitive identifier lookup, (nil, nil) on miss.
type fakeStore struct {
	accounts map[string]*user.Account // keyed by lowercased identifier
	nextID   int
	created  []user.NewAccount
	updates  map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: map[string]*user.Account{},
		updates:  map[string]string{},
	}
}

func (s *fakeStore) seed(id, identifier string) *user.Account {
	acc := &user.Account{ID: id, ExternalIdentifier: identifier}
	s.accounts[strings.ToLower(identifier)] = acc
	return acc
}

func (s *fakeStore) FindByExternalIdentifier(_ context.Context, identifier string) (*user.Account, error) {
	return s.accounts[strings.ToLower(identifier)], nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*user.Account, error) {
	for _, acc := range s.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Create(_ context.Context, acc user.NewAccount) (string, error) {
	s.nextID++
	s.created = append(s.created, acc)
	id := fmt.Sprintf("acc-%d", s.nextID)
	s.accounts[strings.ToLower(acc.ExternalIdentifier)] = &user.Account{
		ID:                 id,
		Email:              acc.Email,
		ExternalIdentifier: acc.ExternalIdentifier,
		AuthData:           acc.AuthData,
	}
	return id, nil
}

func (s *fakeStore) UpdateAuthData(_ context.Context, id, data string) error {
	s.updates[id] = data
	return nil
}

func identity(identifier string, claims auth.Claims) *auth.Identity {
	return &auth.Identity{
		Provider:   "test",
		Identifier: identifier,
		Claims:     claims,
	}
}

func TestExternalIdentifier(t *testing.T) {
	claims := auth.Claims{"sub": "u1", "email": "a@b.com"}

	id, err := ExternalIdentifier(claims, "")
	require.NoError(t, err)
	assert.Equal(t, "u1", id, "default identifier claim is sub")

	id, err = ExternalIdentifier(claims, "email")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", id)

	// Configured claim absent: falls back to email.
	id, err = ExternalIdentifier(claims, "preferred_username")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", id)

	_, err = ExternalIdentifier(auth.Claims{"name": "nobody"}, "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResolveExistingAccount(t *testing.T) {
	store := newFakeStore()
	store.seed("acc-1", "Subject-1")
	r := NewStoreResolver(store, nil)

	// Lookup is case-insensitive and idempotent.
	for i := 0; i < 2; i++ {
		id, err := r.Resolve(context.Background(), identity("subject-1", auth.Claims{}), Policy{})
		require.NoError(t, err)
		assert.Equal(t, "acc-1", id)
	}
	assert.Empty(t, store.created, "existing account must never be duplicated")
	assert.Empty(t, store.updates, "no refresh token, no auth data write")
}

func TestResolveExistingAccountPersistsRefreshToken(t *testing.T) {
	store := newFakeStore()
	store.seed("acc-1", "subject-1")
	r := NewStoreResolver(store, nil)

	ident := identity("subject-1", auth.Claims{})
	ident.RefreshToken = "refresh-1"

	_, err := r.Resolve(context.Background(), ident, Policy{})
	require.NoError(t, err)
	assert.Equal(t, auth.EncodeAuthData("refresh-1"), store.updates["acc-1"])
}

func TestResolveMissingIdentifier(t *testing.T) {
	r := NewStoreResolver(newFakeStore(), nil)

	_, err := r.Resolve(context.Background(), identity("", auth.Claims{}), Policy{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = r.Resolve(context.Background(), nil, Policy{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestResolveRegistrationDisabled(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store, nil)

	// Unknown identity fails regardless of email verification state.
	for _, verified := range []bool{true, false} {
		claims := auth.Claims{"email": "new@example.com", "email_verified": verified}
		_, err := r.Resolve(context.Background(), identity("unknown", claims), Policy{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}
	assert.Empty(t, store.created)
}

func TestResolveRegistrationVerifiedEmailGate(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store, nil)
	policy := Policy{AllowRegistration: true, RequireVerifiedEmail: true}

	claims := auth.Claims{"email": "new@example.com", "email_verified": false}
	_, err := r.Resolve(context.Background(), identity("unknown", claims), policy)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, store.created)

	claims["email_verified"] = true
	id, err := r.Resolve(context.Background(), identity("unknown", claims), policy)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, store.created, 1, "exactly one account created")
}

func TestResolveProvisionsFromClaims(t *testing.T) {
	store := newFakeStore()
	r := NewStoreResolver(store, nil)

	claims := auth.Claims{
		"email":       "jane@example.com",
		"given_name":  "Jane",
		"family_name": "Doe",
	}
	ident := identity("subject-9", claims)
	ident.RefreshToken = "refresh-9"

	_, err := r.Resolve(context.Background(), ident, Policy{
		AllowRegistration: true,
		DefaultRoleID:     "member",
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, "jane@example.com", created.Email)
	assert.Equal(t, "Jane", created.FirstName)
	assert.Equal(t, "Doe", created.LastName)
	assert.Equal(t, "member", created.RoleID)
	assert.Equal(t, "test", created.Provider)
	assert.Equal(t, "subject-9", created.ExternalIdentifier)
	assert.Equal(t, auth.EncodeAuthData("refresh-9"), created.AuthData)
}

func TestResolveAugmentHookReplacesCandidate(t *testing.T) {
	store := newFakeStore()

	var seenMeta AugmentContext
	hook := func(_ context.Context, c user.NewAccount, meta AugmentContext) (user.NewAccount, error) {
		seenMeta = meta
		c.ExternalIdentifier = "rewritten"
		c.RoleID = "escalated"
		return c, nil
	}
	r := NewStoreResolver(store, hook)

	ident := identity("original", auth.Claims{"email": "x@example.com"})
	ident.AccessToken = "access-1"

	id, err := r.Resolve(context.Background(), ident, Policy{AllowRegistration: true})
	require.NoError(t, err)

	// The hook's output is what was persisted, and resolution followed
	// the rewritten identifier.
	require.Len(t, store.created, 1)
	assert.Equal(t, "rewritten", store.created[0].ExternalIdentifier)
	assert.Equal(t, "escalated", store.created[0].RoleID)

	acc, _ := store.FindByID(context.Background(), id)
	require.NotNil(t, acc)
	assert.Equal(t, "rewritten", acc.ExternalIdentifier)

	assert.Equal(t, "original", seenMeta.Identifier)
	assert.Equal(t, "test", seenMeta.Provider)
	assert.Equal(t, "access-1", seenMeta.AccessToken)
}

func TestResolveAugmentHookError(t *testing.T) {
	store := newFakeStore()
	hook := func(_ context.Context, c user.NewAccount, _ AugmentContext) (user.NewAccount, error) {
		return c, assert.AnError
	}
	r := NewStoreResolver(store, hook)

	_, err := r.Resolve(
		context.Background(),
		identity("unknown", auth.Claims{}),
		Policy{AllowRegistration: true},
	)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, store.created)
}
