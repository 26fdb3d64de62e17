package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/KaramelBytes/edakit/pkg/plotting"
	"github.com/KaramelBytes/edakit/pkg/selection"
)

var (
	plotOutDir     string
	plotColumns    []string
	plotIndividual bool
	plotKind       string
	plotBins       int
	plotImage      string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render figures for the selected features",
}

var plotNumCmd = &cobra.Command{
	Use:   "num <file>",
	Short: "Scatter each selected numeric column against the target",
	Args:  cobra.ExactArgs(1),
	RunE: instrumented("plot_num", func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := selection.SelectNumeric(t, selTarget, numericOptions(cmd))
		if err != nil {
			return err
		}
		mtr.ObserveNumeric(res)
		figs, err := plotting.Numeric(t, res, plotOptions(cmd))
		if err != nil {
			return err
		}
		return saveFigures(cmd, figs)
	}),
}

var plotCatCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Draw the target distribution per level of each selected categorical column",
	Args:  cobra.ExactArgs(1),
	RunE: instrumented("plot_cat", func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := selection.SelectCategorical(t, selTarget, categoricalOptions(cmd))
		if err != nil {
			return err
		}
		mtr.ObserveCategorical(res)
		figs, err := plotting.Categorical(t, res, plotOptions(cmd))
		if err != nil {
			return err
		}
		return saveFigures(cmd, figs)
	}),
}

func plotOptions(cmd *cobra.Command) plotting.PlotOptions {
	opt := plotting.DefaultOptions()
	if cfg != nil {
		opt = cfg.PlotOptions()
	}
	opt.Columns = plotColumns
	opt.Individual = plotIndividual
	if cmd.Flags().Changed("kind") {
		opt.Kind = plotting.Kind(plotKind)
	}
	if cmd.Flags().Changed("bins") {
		opt.Bins = plotBins
	}
	return opt
}

func saveFigures(cmd *cobra.Command, figs []*plotting.Figure) error {
	if len(figs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No selected columns to plot")
		return nil
	}
	ext := plotImage
	if ext == "" && cfg != nil {
		ext = cfg.PlotFormat
	}
	if ext == "" {
		ext = "png"
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if err := utils.EnsureDir(plotOutDir); err != nil {
		return fmt.Errorf("create out dir: %w", err)
	}
	for _, f := range figs {
		path := filepath.Join(plotOutDir, utils.SafeBase(f.Name)+"."+ext)
		if err := f.Save(path); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		mtr.FiguresRendered.Inc()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote figure %s\n", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.AddCommand(plotNumCmd, plotCatCmd)
	addSelectionFlags(plotCmd)
	fs := plotCmd.PersistentFlags()
	fs.StringVar(&plotOutDir, "out-dir", "figures", "directory for rendered figures")
	fs.StringSliceVar(&plotColumns, "columns", nil, "only plot these selected columns, in this order")
	fs.StringVar(&plotImage, "image-format", "", "figure format: png|svg|pdf (overrides config)")
	plotCatCmd.Flags().BoolVar(&plotIndividual, "individual", false, "one panel per level instead of overlaying levels")
	plotCatCmd.Flags().StringVar(&plotKind, "kind", "kde", "distribution style: kde|hist")
	plotCatCmd.Flags().IntVar(&plotBins, "bins", 20, "histogram bins when --kind hist")
}
