package selector

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	id "crm/pkg/domain"
)

// CursorStore hands out a monotonically increasing position per team.
type CursorStore interface {
	Next(ctx context.Context, teamID id.TeamID) (uint64, error)
}

// InMemoryCursors keeps the rotating pointers for one process.
type InMemoryCursors struct {
	mu      sync.Mutex
	cursors map[id.TeamID]uint64
}

func NewInMemoryCursors() *InMemoryCursors {
	return &InMemoryCursors{cursors: make(map[id.TeamID]uint64)}
}

func (c *InMemoryCursors) Next(_ context.Context, teamID id.TeamID) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.cursors[teamID]
	c.cursors[teamID] = n + 1
	return n, nil
}

const cursorKeyPrefix = "assign:cursor:"

// RedisCursors shares the rotating pointers across instances.
type RedisCursors struct {
	client *redis.Client
}

func NewRedisCursors(client *redis.Client) *RedisCursors {
	return &RedisCursors{client: client}
}

func (c *RedisCursors) Next(ctx context.Context, teamID id.TeamID) (uint64, error) {
	n, err := c.client.Incr(ctx, cursorKeyPrefix+teamID.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("advance cursor for team %s: %w", teamID, err)
	}
	return uint64(n - 1), nil
}
