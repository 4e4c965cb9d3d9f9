// Package mongodb registers the "mongodb" database driver, backed by the
// official mongo-driver. It serves the mongo task backend.
//
//	import _ "github.com/ncobase/taskdesk/data/mongodb"
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/data/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// driver implements data.DatabaseDriver for MongoDB.
type driver struct{}

func (d *driver) Name() string {
	return "mongodb"
}

// Connect returns a *mongo.Client that answered a primary ping.
func (d *driver) Connect(ctx context.Context, cfg any) (any, error) {
	mongoCfg, ok := cfg.(*config.MongoDB)
	if !ok {
		return nil, fmt.Errorf("mongodb: invalid configuration type, expected *config.MongoDB")
	}
	if mongoCfg.URI == "" {
		return nil, errors.New("mongodb: URI is empty")
	}

	opts := options.Client().ApplyURI(mongoCfg.URI)
	if mongoCfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(mongoCfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: failed to connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: failed to ping: %w", err)
	}
	return client, nil
}

// Close disconnects the client.
func (d *driver) Close(conn any) error {
	client, ok := conn.(*mongo.Client)
	if !ok {
		return fmt.Errorf("mongodb: invalid connection type, expected *mongo.Client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb: failed to disconnect: %w", err)
	}
	return nil
}

// Ping verifies the primary is reachable.
func (d *driver) Ping(ctx context.Context, conn any) error {
	client, ok := conn.(*mongo.Client)
	if !ok {
		return fmt.Errorf("mongodb: invalid connection type, expected *mongo.Client")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: ping failed: %w", err)
	}
	return nil
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
