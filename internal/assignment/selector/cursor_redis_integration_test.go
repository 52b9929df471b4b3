//go:build integration

package selector

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm/pkg/testutil/containers"
)

func TestRedisCursors(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	cursors := NewRedisCursors(rc.Client)
	ctx := context.Background()

	first, err := cursors.Next(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)

	other, err := cursors.Next(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), other)

	var wg sync.WaitGroup
	seen := make(chan uint64, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := cursors.Next(ctx, 7)
			if err == nil {
				seen <- n
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[uint64]struct{}{}
	for n := range seen {
		unique[n] = struct{}{}
	}
	assert.Len(t, unique, 50, "every caller gets its own position")
}
