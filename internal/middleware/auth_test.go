package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idgate/internal/session"
)

type fakeSessionStore struct {
	sessions map[string]session.Session
	deleted  []string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]session.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, s session.Session) error {
	f.sessions[s.SessionID] = s
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessionStore) Update(_ context.Context, s session.Session) error {
	f.sessions[s.SessionID] = s
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func guardedRouter(store session.Store) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)

	var seenUserID string
	r := gin.New()
	r.GET("/guarded", RequireAuth(store), func(c *gin.Context) {
		id, _ := UserIDFromContext(c.Request.Context())
		seenUserID = id
		c.Status(http.StatusOK)
	})
	return r, &seenUserID
}

func TestRequireAuthNoCookie(t *testing.T) {
	r, _ := guardedRouter(newFakeSessionStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthUnknownSession(t *testing.T) {
	r, _ := guardedRouter(newFakeSessionStore())

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "no-such-session"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredSession(t *testing.T) {
	store := newFakeSessionStore()
	require.NoError(t, store.Create(context.Background(), session.Session{
		SessionID: "stale",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	r, _ := guardedRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "stale"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, store.deleted, "stale", "expired session is evicted")
}

func TestRequireAuthAttachesUserID(t *testing.T) {
	store := newFakeSessionStore()
	require.NoError(t, store.Create(context.Background(), session.Session{
		SessionID: "live",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	r, seenUserID := guardedRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "live"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", *seenUserID)
}
