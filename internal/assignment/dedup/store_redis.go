package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crm/internal/assignment/models"
	id "crm/pkg/domain"
)

const keyPrefix = "assign:dedup:"

// checkAndRecord leaves the key alone when it already holds the same
// target, otherwise overwrites it with a fresh expiry. Key expiry is the
// window, so an existing key means the record is younger than the window.
var checkAndRecord = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[1] then
	return 1
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 0
`)

// RedisStore shares the isolation window across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func conversationKey(conversationID id.ConversationID) string {
	return keyPrefix + conversationID.String()
}

func (s *RedisStore) CheckAndRecord(ctx context.Context, op models.Operation, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, fmt.Errorf("dedup window must be positive, got %s", window)
	}
	n, err := checkAndRecord.Run(ctx, s.client,
		[]string{conversationKey(op.ConversationID)},
		op.Target(), window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) Clear(ctx context.Context, conversationID id.ConversationID) error {
	if err := s.client.Del(ctx, conversationKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("dedup clear: %w", err)
	}
	return nil
}
