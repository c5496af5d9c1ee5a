package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus publishes events to a single Redis stream and consumes them
// through a consumer group, one reader goroutine per registered type.
type RedisEventBus struct {
	client *redis.Client
	stream string
	group  string
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithRedis creates the stream and consumer group if they are missing.
func NewWithRedis(client *redis.Client, stream, group string, logger *slog.Logger) (*RedisEventBus, error) {
	if client == nil || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: client, stream and group are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		cancel()
		return nil, fmt.Errorf("redis event bus: create group: %w", err)
	}
	return &RedisEventBus{
		client: client,
		stream: stream,
		group:  group,
		logger: logger.With("bus", "redis", "stream", stream),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// Emit appends the event to the stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return fmt.Errorf("redis event bus: %w", err)
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"type": event.Type(), "event": string(raw)},
	}).Err(); err != nil {
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register starts a consumer that calls handler for each event of
// eventType. Messages of other types are acknowledged and skipped by this
// consumer's group.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	group := b.group + ":" + eventType
	if err := b.client.XGroupCreateMkStream(b.ctx, b.stream, group, "0").Err(); err != nil && !isBusyGroup(err) {
		b.logger.Error("create consumer group failed", "group", group, "error", err)
		return
	}
	consumer := fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	b.logger.Info("registering handler", "event_type", eventType, "group", group)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(group, consumer, eventType, handler)
	}()
}

func (b *RedisEventBus) consume(group, consumer, eventType string, handler eventbus.HandlerFunc) {
	for b.ctx.Err() == nil {
		res, err := b.client.XReadGroup(b.ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{b.stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || b.ctx.Err() != nil {
				continue
			}
			b.logger.Error("error reading from stream", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				b.handle(group, eventType, handler, msg)
			}
		}
	}
}

func (b *RedisEventBus) handle(group, eventType string, handler eventbus.HandlerFunc, msg redis.XMessage) {
	defer func() {
		if err := b.client.XAck(b.ctx, b.stream, group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "msg_id", msg.ID, "error", err)
		}
	}()
	if t, _ := msg.Values["type"].(string); t != eventType {
		return
	}
	raw, _ := msg.Values["event"].(string)
	evt, err := decode([]byte(raw))
	if err != nil {
		b.logger.Error("undecodable message", "msg_id", msg.ID, "error", err)
		b.pushToDLQ(msg.Values)
		return
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("handler panic recovered", "panic", r, "event_type", eventType)
				b.pushToDLQ(msg.Values)
			}
		}()
		if err := handler(b.ctx, deref(evt)); err != nil {
			b.logger.Error("handler error", "event_type", eventType, "error", err)
			b.pushToDLQ(msg.Values)
		}
	}()
}

func (b *RedisEventBus) pushToDLQ(values map[string]any) {
	dlq := b.stream + "-DLQ"
	if err := b.client.XAdd(b.ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "stream", dlq, "error", err)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

// Close stops the consumers. The client is owned by the caller.
func (b *RedisEventBus) Close() error {
	b.cancel()
	b.wg.Wait()
	return nil
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
