package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/config"
	"github.com/pable/go-match-metrics/internal/engine"
	"github.com/pable/go-match-metrics/pkg/logger"
)

var (
	configPath  string
	logLevel    string
	metricsFile string

	// cfg and eng are set up by the root command before any subcommand runs.
	cfg *config.Config
	eng *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "matchmetrics",
	Short: "Match event analytics tool",
	Long: `Validate, analyse and convert manually tagged match events
(shots, passes, defensive actions) exported as CSV or JSON.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cError.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(convertCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	c, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	if cmd.Flags().Changed("metrics-file") {
		c.MetricsFile = metricsFile
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevelString(c.LogLevel); err != nil {
		return err
	}

	cfg = c
	eng = engine.New(cfg, engine.WithLogger(logger.Named("engine")))
	return nil
}

func teardown(cmd *cobra.Command, _ []string) error {
	if eng == nil {
		return nil
	}
	if err := eng.Flush(cmd.Context()); err != nil {
		return fmt.Errorf("flush metrics: %w", err)
	}
	return nil
}
