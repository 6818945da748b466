package redis

import (
	"context"
	"fmt"
	"time"

	"quizzer/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the marker only if it still carries our token, so an expired
// and re-acquired marker is never removed by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionGuard marks a user's active session with a Redis key so that separate
// processes sharing the same data directory cannot run two sessions for one user.
// The TTL bounds how long a crashed process keeps the user locked out.
type SessionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionGuard(client *redis.Client, ttl time.Duration) *SessionGuard {
	return &SessionGuard{
		client: client,
		ttl:    ttl,
	}
}

func (g *SessionGuard) Acquire(ctx context.Context, user string) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.key(user), token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire session marker: %w", err)
	}
	if !ok {
		return nil, domain.ErrSessionActive
	}
	key := g.key(user)
	return func() {
		// best-effort: the TTL cleans up if this fails
		_ = releaseScript.Run(context.Background(), g.client, []string{key}, token).Err()
	}, nil
}

func (g *SessionGuard) key(user string) string {
	return "quizzer:session:" + user
}
