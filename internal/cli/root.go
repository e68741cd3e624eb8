// Package cli wires configuration, logging, the reminder store and the scheduler
// into the dailybell command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notexe/dailybell/internal/config"
	"github.com/notexe/dailybell/internal/logger"
	"github.com/notexe/dailybell/internal/reminder"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	StorePath  string
	NoColor    bool
}

// NewRootCommand creates the root command. Without a subcommand it behaves like run.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	runCmd := NewRunCommand(opts)

	cmd := &cobra.Command{
		Use:           "dailybell",
		Short:         "DailyBell - desktop reminders",
		Long:          "Schedule one-off, daily and weekly reminders and get notified when they are due.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd.RunE,
	}
	cmd.Flags().AddFlagSet(runCmd.Flags())

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.GetDefaultConfigPath(), "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store", "", "reminders file (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	cmd.AddCommand(runCmd)
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewMCPCommand(opts))

	return cmd
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	store *reminder.Store
}

func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.StorePath != "" {
		cfg.Store.Path = opts.StorePath
	}
	if opts.NoColor {
		cfg.UI.ColoredOutput = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := reminder.Open(cfg.Store.Path, reminder.WithLogger(log))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &env{cfg: cfg, log: log, store: store}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}
