//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"crm/internal/realtime"
	"crm/pkg/testutil/containers"
)

func TestPublisherDeliversEvents(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pub, err := NewPublisher([]string{rp.Broker}, WithTopic("assignments-test"))
	require.NoError(t, err)
	require.NoError(t, pub.EnsureTopic(ctx, 1, 1))
	require.NoError(t, pub.EnsureTopic(ctx, 1, 1), "existing topic is fine")

	pub.Broadcast(ctx, realtime.Event{
		Type:           realtime.EventAssignedToTeam,
		ConversationID: 42,
		TeamID:         7,
		Method:         "keyword",
		Timestamp:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, pub.Close(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("assignments-test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	assert.Equal(t, "42", string(records[0].Key))
	var got realtime.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, realtime.EventAssignedToTeam, got.Type)
	assert.EqualValues(t, 7, got.TeamID)
}
