package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/logging/logger"
)

// Service is the hub together with the sinks it was built from.
type Service struct {
	*Hub
	Broadcaster *Broadcaster

	rabbit *RabbitMQSink
}

// New builds the sinks enabled in cfg. A sink whose connection is missing
// from d is an error. The websocket broadcaster always exists so the
// stream endpoints can be mounted; it only receives notifications when
// enabled. With no sinks configured the log sink is used.
func New(cfg *config.Notify, d *data.Data) (*Service, error) {
	if cfg == nil {
		cfg = &config.Notify{}
	}
	if d == nil {
		d = &data.Data{}
	}

	s := &Service{Broadcaster: NewBroadcaster()}
	var sinks []Sink
	var errs []error

	if cfg.Enabled(SinkWebsocket) {
		sinks = append(sinks, s.Broadcaster)
	}
	if cfg.Enabled(SinkLog) || len(cfg.Sinks) == 0 {
		sinks = append(sinks, LogSink{})
	}
	if cfg.Enabled(SinkRedis) {
		if d.Redis == nil {
			errs = append(errs, fmt.Errorf("notify: %s sink needs a redis connection", SinkRedis))
		} else {
			sinks = append(sinks, NewRedisSink(d.Redis, cfg.RedisChannel))
		}
	}
	if cfg.Enabled(SinkKafka) {
		if d.Kafka == nil {
			errs = append(errs, fmt.Errorf("notify: %s sink needs a kafka connection", SinkKafka))
		} else {
			topic := cfg.KafkaTopic
			if topic == "" {
				topic = d.KafkaTopic
			}
			sinks = append(sinks, NewKafkaSink(d.Kafka, topic))
		}
	}
	if cfg.Enabled(SinkRabbitMQ) {
		if d.RabbitMQ == nil {
			errs = append(errs, fmt.Errorf("notify: %s sink needs a rabbitmq connection", SinkRabbitMQ))
		} else {
			s.rabbit = NewRabbitMQSink(d.RabbitMQ, cfg.RabbitMQExchange)
			sinks = append(sinks, s.rabbit)
		}
	}
	for _, name := range cfg.Sinks {
		switch name {
		case SinkWebsocket, SinkLog, SinkRedis, SinkKafka, SinkRabbitMQ:
		default:
			errs = append(errs, fmt.Errorf("notify: unknown sink %q", name))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	s.Hub = NewHub(cfg.Buffer, cfg.Timeout, sinks...)
	return s, nil
}

// Close drains the hub, then disconnects websocket clients and releases
// the rabbitmq channel.
func (s *Service) Close(ctx context.Context) error {
	err := s.Hub.Shutdown(ctx)
	s.Broadcaster.Close()
	if s.rabbit != nil {
		if cerr := s.rabbit.Close(); cerr != nil {
			logger.Warn(ctx, "Failed to close rabbitmq channel", "error", cerr)
		}
	}
	return err
}
