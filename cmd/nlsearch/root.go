package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/nlsearch/internal/config"
	"github.com/copyleftdev/nlsearch/internal/logging"
)

// app carries what every subcommand needs once the root has loaded it.
type app struct {
	logLevel string

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "nlsearch",
		Short: "Minimize functions of two variables",
		Long: `nlsearch finds local minima of two-variable functions with normalized
gradient descent or with an alternating-axis Fibonacci edge search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newObjectivesCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
