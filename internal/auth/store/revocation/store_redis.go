package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var revocationCheckSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "crm_session_revocation_check_duration_seconds",
	Help:    "Latency of session revocation lookups against Redis",
	Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
})

// RedisStore shares the revocation list across instances so a forced
// logout on one node is honoured by all of them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Revoke marks the session as terminated until ttl elapses.
func (s *RedisStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	if err := checkRetention(sessionID, ttl); err != nil {
		return err
	}
	if err := s.client.Set(ctx, revokedKey(sessionID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	start := time.Now()
	n, err := s.client.Exists(ctx, revokedKey(sessionID)).Result()
	revocationCheckSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("check session revocation: %w", err)
	}
	return n > 0, nil
}
