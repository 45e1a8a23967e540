package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const turnLockPrefix = "turnlock:"

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisTurnLocker serializes turns across service instances. The lock
// expires after ttl so a crashed holder cannot block a user forever.
type RedisTurnLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisTurnLocker returns a locker that polls every 50ms while a turn is held.
func NewRedisTurnLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTurnLocker {
	return &RedisTurnLocker{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

func (l *RedisTurnLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := turnLockPrefix + userID
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire turn lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire turn lock: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return func() {
		// The request context may already be done; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release turn lock", zap.String("userId", userID), zap.Error(err))
		}
	}, nil
}
