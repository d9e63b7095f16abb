// cmd/reconciler/root.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cauldron-reconciler/internal/common/config"
	"cauldron-reconciler/internal/common/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configFile string
	logLevel   string

	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Reconcile cauldron drain volumes against reported tickets",
		Long: `reconciler compares the volume drained from a cauldron on a given day
with the volume reported on transport tickets, and classifies the difference.`,
		Version:           version,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default searches ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.SetVersionTemplate("reconciler {{.Version}}\n")

	rootCmd.AddCommand(a.newServeCommand())
	rootCmd.AddCommand(a.newEvaluateCommand())
	rootCmd.AddCommand(a.newVersionCommand())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	if a.configFile != "" {
		a.cfg, err = config.LoadFromFile(a.configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	if a.cfg.App.Version == "" || a.cfg.App.Version == "dev" {
		a.cfg.App.Version = version
	}

	a.zapLog = logger.New(a.cfg.Logging.Level, a.cfg.Logging.Format, a.cfg.Logging.Output)
	a.log = logger.NewZapAdapter(a.zapLog).With(map[string]interface{}{
		"service": a.cfg.App.Name,
		"version": a.cfg.App.Version,
	})
	return nil
}
