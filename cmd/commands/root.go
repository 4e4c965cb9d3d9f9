// Package commands holds the taskdesk command line.
package commands

import (
	"fmt"

	"github.com/ncobase/taskdesk/cmd/commands/migrate"
	"github.com/ncobase/taskdesk/config"
	"github.com/ncobase/taskdesk/logging/logger"
	"github.com/ncobase/taskdesk/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Task board service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: search /etc/taskdesk, $HOME/.taskdesk, .)")

	load := func() (*config.Config, func(), error) {
		return loadConfig(configFile)
	}

	rootCmd.AddCommand(
		NewServeCommand(load),
		migrate.NewCommand(load),
		NewTasksCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}

// loadConfig reads the config and starts the logger. The returned
// function flushes the logger.
func loadConfig(path string) (*config.Config, func(), error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetVersion(version.GetVersionInfo().Version)
	cleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, cleanup, nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetVersionInfo()
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return nil
			}
			out, err := info.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
