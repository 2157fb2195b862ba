package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fraudlab/internal/cfg"
	"fraudlab/internal/metrics"
	"fraudlab/internal/pipeline"
)

var (
	settings   cfg.Settings
	runMetrics *metrics.Metrics

	flagLogLevel     string
	flagRawPath      string
	flagProcessed    string
	flagReportsDir   string
	flagFiguresDir   string
	flagSeed         int64
	flagTestSize     float64
	flagMinPrecision float64
)

// rootCmd is the base command for the fraudlab CLI
var rootCmd = &cobra.Command{
	Use:   "fraudlab",
	Short: "Credit-card fraud detection pipeline",
	Long: `fraudlab explores a labeled credit-card transaction dataset, engineers
time and amount features, scores a held-out split with an external model and
picks the decision threshold that keeps precision above a target while
maximizing recall.

Typical run:
  fraudlab eda
  fraudlab features
  fraudlab baseline
  fraudlab predict --min-precision 0.9`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	pf.StringVar(&flagRawPath, "raw", "", "Raw transactions CSV")
	pf.StringVar(&flagProcessed, "processed", "", "Processed CSV written by features")
	pf.StringVar(&flagReportsDir, "reports", "", "Reports directory")
	pf.StringVar(&flagFiguresDir, "figures", "", "Figures directory")
	pf.Int64Var(&flagSeed, "seed", 0, "Split seed")
	pf.Float64Var(&flagTestSize, "test-size", 0, "Test fraction in (0, 1)")
	pf.Float64Var(&flagMinPrecision, "min-precision", 0, "Precision target in [0, 1]")
}

// setup loads the configuration, applies flag overrides and configures
// logging for every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	s, err := cfg.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		s.LogLevel = flagLogLevel
	}
	if flags.Changed("raw") {
		s.RawPath = flagRawPath
	}
	if flags.Changed("processed") {
		s.ProcessedPath = flagProcessed
	}
	if flags.Changed("reports") {
		s.ReportsDir = flagReportsDir
	}
	if flags.Changed("figures") {
		s.FiguresDir = flagFiguresDir
	}
	if flags.Changed("seed") {
		s.Seed = flagSeed
	}
	if flags.Changed("test-size") {
		s.TestSize = flagTestSize
	}
	if flags.Changed("min-precision") {
		s.MinPrecision = flagMinPrecision
	}
	applyScoringFlags(cmd, &s)

	if err := s.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	settings = s
	runMetrics = metrics.New()
	return nil
}

func pipelineParams() pipeline.Params {
	return pipeline.Params{
		RawPath:       settings.RawPath,
		ProcessedPath: settings.ProcessedPath,
		ReportsDir:    settings.ReportsDir,
		FiguresDir:    settings.FiguresDir,
		Target:        settings.Target,
		Seed:          settings.Seed,
		TestSize:      settings.TestSize,
		MinPrecision:  settings.MinPrecision,
		Model:         settings.Model,
		Bins:          settings.HistogramBins,
		Metrics:       runMetrics,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if runMetrics != nil {
		if werr := runMetrics.WriteTextfile(settings.MetricsFile); werr != nil {
			log.Warn().Err(werr).Str("file", settings.MetricsFile).Msg("Failed to write metrics")
		} else {
			log.Debug().Str("file", settings.MetricsFile).Msg("Metrics written")
		}
	}

	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
