package memory

import (
	"context"
	"sync"

	"quizzer/internal/domain"
)

// SessionGuard tracks active sessions per user within this process.
type SessionGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{
		active: make(map[string]struct{}),
	}
}

// Acquire marks user as playing. The release function is idempotent.
func (g *SessionGuard) Acquire(_ context.Context, user string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[user]; ok {
		return nil, domain.ErrSessionActive
	}
	g.active[user] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, user)
			g.mu.Unlock()
		})
	}, nil
}

// Active reports whether user currently holds a session.
func (g *SessionGuard) Active(user string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[user]
	return ok
}
