package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ncobase/taskdesk/biz/task/structs"
	"github.com/ncobase/taskdesk/logging/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// Sink names as they appear in notify.sinks.
const (
	SinkWebsocket = "websocket"
	SinkLog       = "log"
	SinkRedis     = "redis"
	SinkKafka     = "kafka"
	SinkRabbitMQ  = "rabbitmq"
)

// LogSink writes each notification to the application log.
type LogSink struct{}

// Name implements Sink.
func (LogSink) Name() string { return SinkLog }

// Deliver implements Sink.
func (LogSink) Deliver(ctx context.Context, n structs.Notification) error {
	fields := []any{"id", n.ID, "topic", n.Topic, "level", n.Level}
	if n.Level == structs.LevelError {
		logger.Warn(ctx, n.Message, fields...)
	} else {
		logger.Info(ctx, n.Message, fields...)
	}
	return nil
}

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes notifications as JSON on a pub/sub channel.
type RedisSink struct {
	client  redisPublisher
	channel string
}

// NewRedisSink creates a redis sink.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Name implements Sink.
func (s *RedisSink) Name() string { return SinkRedis }

// Deliver implements Sink.
func (s *RedisSink) Deliver(ctx context.Context, n structs.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink writes notifications to a topic keyed by notification topic,
// so one user's notifications stay ordered within a partition.
type KafkaSink struct {
	writer kafkaWriter
	topic  string
}

// NewKafkaSink creates a kafka sink.
func NewKafkaSink(writer *kafka.Writer, topic string) *KafkaSink {
	return &KafkaSink{writer: writer, topic: topic}
}

// Name implements Sink.
func (s *KafkaSink) Name() string { return SinkKafka }

// Deliver implements Sink.
func (s *KafkaSink) Deliver(ctx context.Context, n structs.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Topic: s.topic,
		Key:   []byte(n.Topic),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "level", Value: []byte(n.Level)},
		},
	})
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQSink publishes notifications to a topic exchange. The routing
// key is the notification topic.
type RabbitMQSink struct {
	open     func() (amqpChannel, error)
	exchange string

	mu sync.Mutex
	ch amqpChannel
}

// NewRabbitMQSink creates a rabbitmq sink on conn.
func NewRabbitMQSink(conn *amqp.Connection, exchange string) *RabbitMQSink {
	return &RabbitMQSink{
		open:     func() (amqpChannel, error) { return conn.Channel() },
		exchange: exchange,
	}
}

// Name implements Sink.
func (s *RabbitMQSink) Name() string { return SinkRabbitMQ }

// Deliver implements Sink. A failed publish drops the channel so the next
// delivery opens a fresh one.
func (s *RabbitMQSink) Deliver(ctx context.Context, n structs.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ch == nil {
		ch, err := s.open()
		if err != nil {
			return fmt.Errorf("rabbitmq: open channel: %w", err)
		}
		if err := ch.ExchangeDeclare(s.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return fmt.Errorf("rabbitmq: declare exchange: %w", err)
		}
		s.ch = ch
	}

	err = s.ch.PublishWithContext(ctx, s.exchange, n.Topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.ID,
		Timestamp:    n.CreatedAt,
		Body:         payload,
	})
	if err != nil {
		_ = s.ch.Close()
		s.ch = nil
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// Close releases the channel.
func (s *RabbitMQSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil
	}
	err := s.ch.Close()
	s.ch = nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
