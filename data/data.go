package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ncobase/taskdesk/data/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// connection keeps what is needed to close and probe one live connection.
type connection struct {
	kind  string
	conn  any
	close func(any) error
	ping  func(context.Context, any) error
}

// Data holds the connections opened from the data section of the config.
// Only configured components are connected; the others stay nil.
type Data struct {
	DB            *sql.DB
	Dialect       string
	Redis         *redis.Client
	Mongo         *mongo.Client
	MongoDatabase string
	Kafka         *kafka.Writer
	KafkaTopic    string
	RabbitMQ      *amqp.Connection

	conns []connection
}

// New connects every configured component through its registered driver.
// On failure the connections already opened are closed again.
func New(ctx context.Context, cfg *config.Config) (*Data, func(), error) {
	d := &Data{}
	if cfg == nil {
		return d, func() {}, nil
	}

	if err := d.open(ctx, cfg); err != nil {
		_ = d.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := d.Close(); err != nil {
			fmt.Printf("cleanup errors: %v\n", err)
		}
	}
	return d, cleanup, nil
}

func (d *Data) open(ctx context.Context, cfg *config.Config) error {
	if db := cfg.Database; db != nil && db.Master != nil && db.Master.Driver != "" && db.Master.Source != "" {
		drv, err := GetDatabaseDriver(db.Master.Driver)
		if err != nil {
			return err
		}
		conn, err := drv.Connect(ctx, db.Master)
		if err != nil {
			return err
		}
		d.track(db.Master.Driver, conn, drv.Close, drv.Ping)
		sqlDB, ok := conn.(*sql.DB)
		if !ok {
			return fmt.Errorf("data: driver %s returned %T, expected *sql.DB", db.Master.Driver, conn)
		}
		d.DB, d.Dialect = sqlDB, db.Master.Driver
	}

	if rc := cfg.Redis; rc != nil && rc.Addr != "" {
		drv, err := GetCacheDriver("redis")
		if err != nil {
			return err
		}
		conn, err := drv.Connect(ctx, rc)
		if err != nil {
			return err
		}
		d.track("redis", conn, drv.Close, drv.Ping)
		client, ok := conn.(*redis.Client)
		if !ok {
			return fmt.Errorf("data: redis driver returned %T", conn)
		}
		d.Redis = client
	}

	if mc := cfg.MongoDB; mc != nil && mc.URI != "" {
		drv, err := GetDatabaseDriver("mongodb")
		if err != nil {
			return err
		}
		conn, err := drv.Connect(ctx, mc)
		if err != nil {
			return err
		}
		d.track("mongodb", conn, drv.Close, drv.Ping)
		client, ok := conn.(*mongo.Client)
		if !ok {
			return fmt.Errorf("data: mongodb driver returned %T", conn)
		}
		d.Mongo, d.MongoDatabase = client, mc.Database
	}

	if kc := cfg.Kafka; kc != nil && len(kc.Brokers) > 0 {
		drv, err := GetMessageDriver("kafka")
		if err != nil {
			return err
		}
		conn, err := drv.Connect(ctx, kc)
		if err != nil {
			return err
		}
		d.track("kafka", conn, drv.Close, nil)
		writer, ok := conn.(*kafka.Writer)
		if !ok {
			return fmt.Errorf("data: kafka driver returned %T", conn)
		}
		d.Kafka, d.KafkaTopic = writer, kc.Topic
	}

	if qc := cfg.RabbitMQ; qc != nil && qc.URL != "" {
		drv, err := GetMessageDriver("rabbitmq")
		if err != nil {
			return err
		}
		conn, err := drv.Connect(ctx, qc)
		if err != nil {
			return err
		}
		d.track("rabbitmq", conn, drv.Close, nil)
		amqpConn, ok := conn.(*amqp.Connection)
		if !ok {
			return fmt.Errorf("data: rabbitmq driver returned %T", conn)
		}
		d.RabbitMQ = amqpConn
	}

	return nil
}

func (d *Data) track(kind string, conn any, closeFn func(any) error, ping func(context.Context, any) error) {
	d.conns = append(d.conns, connection{kind: kind, conn: conn, close: closeFn, ping: ping})
}

// MongoDB returns the configured mongo database, or nil.
func (d *Data) MongoDB() *mongo.Database {
	if d.Mongo == nil {
		return nil
	}
	return d.Mongo.Database(d.MongoDatabase)
}

// Ping probes every connection that supports it, keyed by kind. A nil
// value means healthy.
func (d *Data) Ping(ctx context.Context) map[string]error {
	out := make(map[string]error, len(d.conns))
	for _, c := range d.conns {
		if c.ping == nil {
			out[c.kind] = nil
			continue
		}
		out[c.kind] = c.ping(ctx, c.conn)
	}
	return out
}

// Close closes connections in reverse order of opening.
func (d *Data) Close() error {
	var errs []error
	for i := len(d.conns) - 1; i >= 0; i-- {
		c := d.conns[i]
		if err := c.close(c.conn); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.kind, err))
		}
	}
	d.conns = nil
	return errors.Join(errs...)
}
