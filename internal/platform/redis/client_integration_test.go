//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"crm/pkg/testutil/containers"
)

func TestNew_ConnectsAndReportsHealthy(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := New(ctx, rc.Config())
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))

	require.NoError(t, client.Close())
	require.Error(t, client.Health(ctx))
}
