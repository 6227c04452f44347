package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"team-chat-service/internal/models"
)

const keyTTL = 24 * time.Hour

// Tracker mirrors user presence for consumers that want cheap reads. Postgres
// stays the source of record; the mirror is written through on every status
// mutation and never consulted for authorization.
type Tracker interface {
	Set(ctx context.Context, userID int, status models.PresenceStatus)
}

// NewTracker builds a Redis-backed tracker, or a noop tracker when no address
// is configured or the server is unreachable.
func NewTracker(addr, password string) Tracker {
	if addr == "" {
		zap.L().Info("presence mirror disabled, using noop", zap.String("reason", "empty redis addr"))
		return noopTracker{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zap.L().Warn("presence mirror disabled, using noop", zap.Error(err))
		_ = client.Close()
		return noopTracker{}
	}

	zap.L().Info("presence mirror connected", zap.String("addr", addr))
	return &redisTracker{client: client}
}

type redisTracker struct {
	client *redis.Client
}

func (t *redisTracker) Set(ctx context.Context, userID int, status models.PresenceStatus) {
	key := fmt.Sprintf("presence:user:%d", userID)
	if err := t.client.Set(ctx, key, string(status), keyTTL).Err(); err != nil {
		zap.L().Warn("presence mirror write failed", zap.Int("user_id", userID), zap.Error(err))
	}
}

type noopTracker struct{}

func (noopTracker) Set(context.Context, int, models.PresenceStatus) {}
