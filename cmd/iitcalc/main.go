package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rpgo/withholding-calculator/internal/calculation"
	"github.com/rpgo/withholding-calculator/internal/config"
	"github.com/rpgo/withholding-calculator/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// app carries what every subcommand needs once settings are loaded.
type app struct {
	settingsPath string
	logLevel     string
	outDir       string

	loader   *config.SettingsLoader
	settings *config.Settings
	logger   *zap.Logger
	engine   *calculation.CalculationEngine
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{loader: config.NewSettingsLoader()}

	root := &cobra.Command{
		Use:           "iitcalc",
		Short:         "Cumulative individual income tax withholding calculator",
		Long:          "iitcalc computes next month's individual income tax withholding using the cumulative (year-to-date) method.",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.settingsPath, "config", "", "path to settings YAML file (optional)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringP("format", "o", "console", "output format (console, csv, json, yaml)")
	flags.StringVar(&a.outDir, "out-dir", "", "also save the report to a timestamped file in this directory")

	root.AddCommand(
		newCalcCmd(a),
		newBatchCmd(a),
		newScheduleCmd(a),
		newBracketsCmd(),
		newExampleCmd(),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := a.loader.BindFlag("output.format", cmd.Flags().Lookup("format")); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("addr"); f != nil {
		if err := a.loader.BindFlag("server.address", f); err != nil {
			return err
		}
	}

	settings, err := a.loader.Load(a.settingsPath)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := logging.New(settings.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	a.engine = calculation.NewCalculationEngine()
	a.engine.SetLogger(logger.Sugar())
	return nil
}

func (a *app) inputDefaults() (config.Defaults, error) {
	return a.settings.InputDefaults(time.Now())
}
