package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client for it.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0.5",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisEventBus_EmitAndConsume(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	client := setupRedis(t)
	bus, err := NewWithRedis(client, "test:events", "test", quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan events.Event, 1)
	bus.Register(events.EventTypeGoldPurchased.String(), func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})

	ev := purchase()
	require.NoError(t, bus.Emit(context.Background(), events.Settled{Kind: events.EventTypeGoldSold, UserID: ev.UserID}))
	require.NoError(t, bus.Emit(context.Background(), ev))

	select {
	case e := <-received:
		settled, ok := e.(events.Settled)
		require.True(t, ok)
		require.Equal(t, ev.EventID, settled.EventID)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
