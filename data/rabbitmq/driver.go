// Package rabbitmq registers the "rabbitmq" message driver, backed by
// amqp091-go.
//
//	import _ "github.com/ncobase/taskdesk/data/rabbitmq"
package rabbitmq

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

// driver implements data.MessageDriver for RabbitMQ.
type driver struct{}

func (d *driver) Name() string {
	return "rabbitmq"
}

// Connect dials the broker. URL is either a full amqp(s):// URL or a
// host:port that is completed with the credentials and vhost.
func (d *driver) Connect(_ context.Context, cfg any) (any, error) {
	rmqCfg, ok := cfg.(*config.RabbitMQ)
	if !ok {
		return nil, fmt.Errorf("rabbitmq: invalid configuration type, expected *config.RabbitMQ")
	}

	connURL, err := BuildURL(rmqCfg)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(connURL, amqp.Config{Heartbeat: rmqCfg.HeartbeatInterval})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: failed to connect: %w", err)
	}

	return conn, nil
}

// BuildURL returns the dial URL for cfg.
func BuildURL(cfg *config.RabbitMQ) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("rabbitmq: URL is empty")
	}
	if strings.HasPrefix(cfg.URL, "amqp://") || strings.HasPrefix(cfg.URL, "amqps://") {
		return cfg.URL, nil
	}

	u := url.URL{Scheme: "amqp", Host: cfg.URL, Path: "/"}
	if cfg.Username != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if cfg.Vhost != "" {
		u.Path = "/" + strings.TrimPrefix(cfg.Vhost, "/")
	}
	return u.String(), nil
}

// Close terminates the RabbitMQ connection.
func (d *driver) Close(conn any) error {
	amqpConn, ok := conn.(*amqp.Connection)
	if !ok {
		return fmt.Errorf("rabbitmq: invalid connection type, expected *amqp.Connection")
	}
	if amqpConn.IsClosed() {
		return nil
	}
	if err := amqpConn.Close(); err != nil {
		return fmt.Errorf("rabbitmq: failed to close connection: %w", err)
	}
	return nil
}

func init() {
	data.RegisterMessageDriver(&driver{})
}
