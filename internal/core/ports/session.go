package ports

import (
	"context"
	"time"

	"github.com/skillsphere/web/internal/core/domain"
)

// SessionStore persists the identity token bound to a browser session id.
// Get returns ("", nil) when the session has no token.
type SessionStore interface {
	Get(ctx context.Context, sid string) (string, error)
	Set(ctx context.Context, sid, token string, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}

// IdentityResolver turns a stored token back into a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Scheduler runs fn asynchronously. Work scheduled under the same key runs in
// submission order. Schedule never blocks; it reports false when the work was
// not accepted.
type Scheduler interface {
	Schedule(key string, fn func(ctx context.Context)) bool
}

// SessionProvider exposes session state to request handlers.
type SessionProvider interface {
	Snapshot(sid string) domain.Session
	Await(ctx context.Context, sid string) domain.Session
	SignIn(ctx context.Context, sid, token string, user *domain.User) error
	SignOut(ctx context.Context, sid string) error
}

// FlashStore keeps one-shot toast messages per browser session.
type FlashStore interface {
	Push(ctx context.Context, sid string, f domain.Flash) error
	Pop(ctx context.Context, sid string) ([]domain.Flash, error)
}
