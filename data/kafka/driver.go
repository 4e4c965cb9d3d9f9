// Package kafka registers the "kafka" message driver, backed by
// segmentio/kafka-go. A connection is a *kafka.Writer shared by every
// publisher; topics are chosen per message.
//
//	import _ "github.com/ncobase/taskdesk/data/kafka"
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"
	"github.com/segmentio/kafka-go"
)

// driver implements data.MessageDriver for Kafka.
type driver struct{}

func (d *driver) Name() string {
	return "kafka"
}

// Connect checks the first broker answers, then returns a writer balanced
// across all brokers.
func (d *driver) Connect(ctx context.Context, cfg any) (any, error) {
	kafkaCfg, ok := cfg.(*config.Kafka)
	if !ok {
		return nil, fmt.Errorf("kafka: invalid configuration type, expected *config.Kafka")
	}

	if len(kafkaCfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: brokers are empty")
	}

	dialer := &kafka.Dialer{ClientID: kafkaCfg.ClientID, Timeout: kafkaCfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", kafkaCfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to connect: %w", err)
	}
	_ = conn.Close()

	writeTimeout := kafkaCfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(kafkaCfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}, nil
}

// Close flushes pending messages and closes the writer.
func (d *driver) Close(conn any) error {
	writer, ok := conn.(*kafka.Writer)
	if !ok {
		return fmt.Errorf("kafka: invalid connection type, expected *kafka.Writer")
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}

	return nil
}

func init() {
	data.RegisterMessageDriver(&driver{})
}
