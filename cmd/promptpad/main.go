package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/config"
	"github.com/joestump/promptpad/internal/logging"
)

// app carries what every subcommand shares once the root has run.
type app struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "promptpad",
		Short:         "A playground for prompt templates",
		Long:          "promptpad renders prompt templates against JSON, keeps a library of them and chats with a model through the rendered prompt.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if a.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newEncodeCmd(a))
	rootCmd.AddCommand(newModelsCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
