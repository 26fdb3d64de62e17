package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
	"github.com/KaramelBytes/edakit/internal/metrics"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	outFormat   string
	outputPath  string
	metricsFile string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Process-wide counters, written as a textfile when --metrics-file is set.
	mtr = metrics.New()
)

var rootCmd = &cobra.Command{
	Use:   "edakit",
	Short: "edakit: exploratory data analysis for regression targets",
	Long: `edakit profiles the columns of a CSV/TSV/XLSX dataset, suggests their statistical type,
and selects the numeric and categorical features related to a continuous target.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.edakit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "f", "", "report format: markdown|yaml|json (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the command")
}

func loadConfig() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
	setupLogging(cfg.LogLevel)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// instrumented wraps a RunE so every command is timed and the metrics textfile is refreshed.
func instrumented(name string, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		err := run(cmd, args)
		mtr.ObserveCommand(name, start, err)
		path := metricsFile
		if path == "" && cfg != nil {
			path = cfg.MetricsFile
		}
		if path != "" {
			if werr := mtr.WriteTextfile(path); werr != nil {
				log.Warn().Err(werr).Str("path", path).Msg("metrics not written")
			}
		}
		return err
	}
}
