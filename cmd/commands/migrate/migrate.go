// Package migrate creates the tables of the sql backend.
package migrate

import (
	"context"
	"errors"
	"fmt"

	taskrepo "github.com/ncobase/taskdesk/biz/task/data/repository"
	"github.com/ncobase/taskdesk/config"
	authrepo "github.com/ncobase/taskdesk/core/auth/data/repository"
	"github.com/ncobase/taskdesk/data"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/spf13/cobra"

	_ "github.com/ncobase/taskdesk/data/all"
)

// NewCommand creates a new migrate command
func NewCommand(load func() (*config.Config, func(), error)) *cobra.Command {
	var skipTasks bool

	cmd := &cobra.Command{
		Use:     "migrate",
		Args:    cobra.NoArgs,
		Aliases: []string{"m"},
		Short:   "Create the database tables",
		Long:    `Create the users, sessions and tasks tables in the configured database. Existing tables are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := load()
			if err != nil {
				return err
			}
			defer cleanup()
			return run(cmd.Context(), cfg, !skipTasks)
		},
	}

	cmd.Flags().BoolVar(&skipTasks, "skip-tasks", false, "only create the account tables")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, tasks bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d, cleanup, err := data.New(ctx, cfg.Data)
	if err != nil {
		return err
	}
	defer cleanup()
	if d.DB == nil {
		return errors.New("no database configured")
	}

	if _, _, err := authrepo.NewSQLRepositories(ctx, d.DB, d.Dialect, true); err != nil {
		return fmt.Errorf("accounts: %w", err)
	}
	logger.Info(ctx, "Account tables ready", "dialect", d.Dialect)

	if !tasks {
		return nil
	}
	repo, err := taskrepo.NewSQL(d.DB, d.Dialect, nil)
	if err != nil {
		return err
	}
	if err := repo.Migrate(ctx); err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	logger.Info(ctx, "Task table ready", "dialect", d.Dialect)
	return nil
}
