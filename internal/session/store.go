package session

import (
	"context"
	"time"
)

// Session represents an authenticated user session. It stores identity
// pointers only; provider tokens live on the account, not here.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"` // references users.id
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry
}

// Store defines how sessions are stored and retrieved. Implementations
// must treat session contents as opaque.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
