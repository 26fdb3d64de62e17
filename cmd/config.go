package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set edakit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "categorical_threshold: %d\n", cfg.CategoricalThreshold)
		fmt.Fprintf(out, "continuous_threshold: %.3f\n", cfg.ContinuousThreshold)
		fmt.Fprintf(out, "min_correlation: %.3f\n", cfg.MinCorrelation)
		fmt.Fprintf(out, "max_p_value: %.3f\n", cfg.MaxPValue)
		fmt.Fprintf(out, "plot_kind: %s\n", cfg.PlotKind)
		fmt.Fprintf(out, "plot_bins: %d\n", cfg.PlotBins)
		fmt.Fprintf(out, "plot_format: %s\n", cfg.PlotFormat)
		fmt.Fprintf(out, "panel_size_inch: %.2f\n", cfg.PanelSizeInch)
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		if cfg.MetricsFile != "" {
			fmt.Fprintf(out, "metrics_file: %s\n", cfg.MetricsFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "categorical_threshold":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for categorical_threshold: %w", err)
			}
			next.CategoricalThreshold = i
		case "continuous_threshold", "min_correlation", "max_p_value", "panel_size_inch":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			switch key {
			case "continuous_threshold":
				next.ContinuousThreshold = f
			case "min_correlation":
				next.MinCorrelation = f
			case "max_p_value":
				next.MaxPValue = f
			default:
				next.PanelSizeInch = f
			}
		case "plot_kind":
			next.PlotKind = val
		case "plot_bins":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for plot_bins: %w", err)
			}
			next.PlotBins = i
		case "plot_format":
			next.PlotFormat = val
		case "decimal_separator":
			next.DecimalSeparator = val
		case "thousands_separator":
			next.ThousandsSeparator = val
		case "output_format":
			next.OutputFormat = val
		case "log_level":
			next.LogLevel = val
		case "metrics_file":
			next.MetricsFile = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
