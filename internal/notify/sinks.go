package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	redis "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"venuepos/backend/internal/domain"
)

const (
	DefaultRedisChannel = "venuepos:notifications"
	DefaultTopic        = "venuepos.notifications"
	DefaultQueue        = "venuepos.notifications"
)

type NotificationWriter interface {
	CreateNotification(ctx context.Context, n domain.Notification) error
}

// StoreSink persists notifications so staff can list and mark them read.
type StoreSink struct {
	repo NotificationWriter
}

func NewStoreSink(repo NotificationWriter) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, env Envelope) error {
	return s.repo.CreateNotification(ctx, env.Payload)
}

type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, env Envelope) error {
	b, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, b).Err()
}

// KafkaSink writes asynchronously; broker errors surface in the completion
// callback rather than from Deliver.
type KafkaSink struct {
	w *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.Printf("[notify] WARN: kafka write of %d message(s) failed: %v", len(messages), err)
				}
			},
		},
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Deliver(ctx context.Context, env Envelope) error {
	b, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.EventType),
		Value: b,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	})
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}

// RabbitSink keeps one connection and channel open. Only the dispatcher
// worker calls Deliver, so the channel is never used concurrently.
type RabbitSink struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewRabbitSink(url string, queue string) (*RabbitSink, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &RabbitSink{conn: conn, ch: ch, queue: queue}, nil
}

func (s *RabbitSink) Name() string { return "rabbitmq" }

func (s *RabbitSink) Deliver(ctx context.Context, env Envelope) error {
	b, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Type:         env.EventType,
		Timestamp:    time.Now().UTC(),
		Body:         b,
	})
}

func (s *RabbitSink) Close() error {
	_ = s.ch.Close()
	return s.conn.Close()
}
