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
	"github.com/segmentio/kafka-go"
)

// KafkaEventBusConfig holds configuration for the Kafka event bus.
type KafkaEventBusConfig struct {
	Brokers     []string
	GroupID     string
	TopicPrefix string
}

// KafkaEventBus publishes each event type to its own topic, keyed by user
// so one user's events stay ordered within a partition.
type KafkaEventBus struct {
	config *KafkaEventBusConfig
	writer *kafka.Writer
	dialer *kafka.Dialer
	logger *slog.Logger

	readersMtx sync.Mutex
	readers    []*kafka.Reader

	topicsMtx sync.Mutex
	topics    map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWithKafka dials the first broker to fail fast on bad configuration.
func NewWithKafka(config *KafkaEventBusConfig, logger *slog.Logger) (*KafkaEventBus, error) {
	if config == nil || len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka event bus: brokers are required")
	}
	if config.GroupID == "" {
		config.GroupID = "gold-settlement"
	}
	if strings.TrimSpace(config.TopicPrefix) == "" {
		config.TopicPrefix = "gold.settlement"
	}
	if logger == nil {
		logger = slog.Default()
	}

	dialer := &kafka.Dialer{Timeout: 5 * time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	b := &KafkaEventBus{
		config: config,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(config.Brokers...),
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
		},
		dialer:  dialer,
		logger:  logger.With("bus", "kafka"),
		topics:  make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	conn, err := dialer.DialContext(ctx, "tcp", config.Brokers[0])
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("kafka event bus: connection failed: %w", err)
	}
	_ = conn.Close()

	b.logger.Info("Kafka event bus initialized", "brokers", config.Brokers, "group_id", config.GroupID)
	return b, nil
}

// Emit publishes an event to the topic for its type.
func (b *KafkaEventBus) Emit(ctx context.Context, event events.Event) error {
	raw, err := encode(event)
	if err != nil {
		return fmt.Errorf("kafka event bus: %w", err)
	}
	topic := b.topicFor(event.Type())
	if err := b.ensureTopic(ctx, topic); err != nil {
		return err
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   partitionKey(event),
		Value: raw,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("kafka event bus: publish failed: %w", err)
	}
	return nil
}

func partitionKey(event events.Event) []byte {
	switch e := event.(type) {
	case events.Settled:
		return []byte(e.UserID.String())
	case events.UserNotified:
		return []byte(e.UserID.String())
	}
	return []byte(event.Type())
}

// Register starts one group reader per event type.
func (b *KafkaEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.readersMtx.Lock()
	defer b.readersMtx.Unlock()

	topic := b.topicFor(eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		b.logger.Error("kafka ensure topic error", "topic", topic, "error", err)
		return
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.config.Brokers,
		GroupID:     b.config.GroupID + "." + strings.ToLower(eventType),
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
		Dialer:      b.dialer,
	})
	b.readers = append(b.readers, reader)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(eventType, reader, handler)
	}()
}

func (b *KafkaEventBus) consume(eventType string, reader *kafka.Reader, handler eventbus.HandlerFunc) {
	for {
		msg, err := reader.FetchMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error("kafka consume error", "event_type", eventType, "error", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := b.process(eventType, msg, handler); err != nil {
			b.logger.Error("kafka message processing failed", "offset", msg.Offset, "error", err)
			if err := b.publishToDLQ(eventType, msg.Value); err != nil {
				b.logger.Error("kafka dlq publish failed; will redeliver", "error", err)
				continue
			}
		}
		if err := reader.CommitMessages(b.ctx, msg); err != nil {
			b.logger.Error("kafka commit error", "offset", msg.Offset, "error", err)
		}
	}
}

func (b *KafkaEventBus) process(eventType string, msg kafka.Message, handler eventbus.HandlerFunc) (err error) {
	evt, err := decode(msg.Value)
	if err != nil {
		return err
	}
	if evt.Type() != eventType {
		b.logger.Warn("envelope type mismatch for topic", "expected", eventType, "actual", evt.Type())
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(b.ctx, deref(evt))
}

func (b *KafkaEventBus) publishToDLQ(eventType string, raw []byte) error {
	topic := b.config.TopicPrefix + ".dlq." + strings.ToLower(eventType)
	if err := b.ensureTopic(b.ctx, topic); err != nil {
		return err
	}
	return b.writer.WriteMessages(b.ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(eventType),
		Value: raw,
		Time:  time.Now(),
	})
}

func (b *KafkaEventBus) topicFor(eventType string) string {
	return b.config.TopicPrefix + "." + strings.ToLower(eventType)
}

func (b *KafkaEventBus) ensureTopic(ctx context.Context, topic string) error {
	b.topicsMtx.Lock()
	_, exists := b.topics[topic]
	b.topicsMtx.Unlock()
	if exists {
		return nil
	}

	conn, err := b.dialer.DialContext(ctx, "tcp", b.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("kafka event bus: dial failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	err = conn.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("kafka event bus: create topic failed: %w", err)
	}

	b.topicsMtx.Lock()
	b.topics[topic] = struct{}{}
	b.topicsMtx.Unlock()
	return nil
}

// Close stops the readers and flushes the writer.
func (b *KafkaEventBus) Close() error {
	b.cancel()
	b.readersMtx.Lock()
	for _, r := range b.readers {
		_ = r.Close()
	}
	b.readersMtx.Unlock()
	b.wg.Wait()
	return b.writer.Close()
}

var _ eventbus.Bus = (*KafkaEventBus)(nil)
