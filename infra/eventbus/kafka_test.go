//go:build kafka

package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafkaBus(t *testing.T) *KafkaEventBus {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	bus, err := NewWithKafka(&KafkaEventBusConfig{Brokers: brokers, GroupID: "test", TopicPrefix: "test.events"}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestKafkaEventBus_EmitAndConsume(t *testing.T) {
	bus := setupKafkaBus(t)

	received := make(chan events.Event, 1)
	bus.Register(events.EventTypeGoldPurchased.String(), func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})

	ev := purchase()
	require.NoError(t, bus.Emit(context.Background(), ev))

	select {
	case e := <-received:
		settled, ok := e.(events.Settled)
		require.True(t, ok)
		require.Equal(t, ev.EventID, settled.EventID)
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
