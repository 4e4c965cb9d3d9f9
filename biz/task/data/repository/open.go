package repository

import (
	"context"
	"fmt"

	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/types"
)

// Open builds the backend named by cfg.Driver on top of the connections in
// d and wraps it in a circuit breaker. The sql backend migrates its table
// when migrate is set.
func Open(ctx context.Context, cfg *config.Backend, d *data.Data, migrate bool, clock types.Clock) (*Breaker, error) {
	if cfg == nil {
		cfg = &config.Backend{Driver: "memory"}
	}

	var (
		repo Repository
		err  error
	)
	switch cfg.Driver {
	case "", "memory":
		repo = NewMemory(clock)
	case "sql":
		if d == nil || d.DB == nil {
			return nil, fmt.Errorf("backend sql: no database configured")
		}
		var s *SQL
		if s, err = NewSQL(d.DB, d.Dialect, clock); err != nil {
			return nil, err
		}
		if migrate {
			if err = s.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		repo = s
	case "mongo", "mongodb":
		if d == nil || d.MongoDB() == nil {
			return nil, fmt.Errorf("backend mongo: no mongodb configured")
		}
		repo = NewMongo(d.MongoDB(), clock)
	case "postgrest":
		if cfg.PostgREST == nil {
			return nil, fmt.Errorf("backend postgrest: no endpoint configured")
		}
		if repo, err = NewPostgREST(PostgRESTOptions{
			URL:     cfg.PostgREST.URL,
			APIKey:  cfg.PostgREST.APIKey,
			Timeout: cfg.PostgREST.Timeout,
		}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown task backend %q", cfg.Driver)
	}

	name := cfg.Driver
	if name == "" {
		name = "memory"
	}
	return NewBreaker("tasks."+name, repo, cfg.Breaker), nil
}
