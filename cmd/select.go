package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/pkg/selection"
)

var (
	selTarget  string
	selMinCorr float64
	selMaxP    float64
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select features related to a continuous target",
}

var selectNumCmd = &cobra.Command{
	Use:   "num <file>",
	Short: "Score discrete/continuous columns with Pearson correlation",
	Args:  cobra.ExactArgs(1),
	RunE: instrumented("select_num", func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := selection.SelectNumeric(t, selTarget, numericOptions(cmd))
		if err != nil {
			return err
		}
		mtr.ObserveNumeric(res)
		log.Info().Str("target", selTarget).Strs("selected", res.Columns()).Msg("numeric selection done")
		return writeReport(cmd, "numeric_selection", args[0], res)
	}),
}

var selectCatCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Test binary/nominal columns with Mann-Whitney U or ANOVA",
	Args:  cobra.ExactArgs(1),
	RunE: instrumented("select_cat", func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		res, err := selection.SelectCategorical(t, selTarget, categoricalOptions(cmd))
		if err != nil {
			return err
		}
		mtr.ObserveCategorical(res)
		log.Info().Str("target", selTarget).Strs("selected", res.Columns()).Msg("categorical selection done")
		return writeReport(cmd, "categorical_selection", args[0], res)
	}),
}

func numericOptions(cmd *cobra.Command) selection.NumericOptions {
	opt := selection.DefaultNumericOptions()
	if cfg != nil {
		opt = cfg.NumericOptions()
	}
	opt.Profile = profileOptions(cmd)
	if cmd.Flags().Changed("min-corr") {
		opt.MinCorrelation = selMinCorr
	}
	if cmd.Flags().Changed("max-p") {
		opt.MaxPValue = selMaxP
	}
	return opt
}

func categoricalOptions(cmd *cobra.Command) selection.CategoricalOptions {
	opt := selection.DefaultCategoricalOptions()
	if cfg != nil {
		opt = cfg.CategoricalOptions()
	}
	opt.Profile = profileOptions(cmd)
	if cmd.Flags().Changed("max-p") {
		opt.MaxPValue = selMaxP
	}
	return opt
}

// addSelectionFlags registers the target and thresholds as persistent flags of parent.
func addSelectionFlags(parent *cobra.Command) {
	fs := parent.PersistentFlags()
	fs.StringVarP(&selTarget, "target", "t", "", "continuous target column (required)")
	fs.Float64Var(&selMinCorr, "min-corr", 0.4, "minimum |r| for numeric features (overrides config)")
	fs.Float64Var(&selMaxP, "max-p", 0.05, "maximum p-value (overrides config)")
	_ = parent.MarkPersistentFlagRequired("target")
	addInputFlags(fs)
	addProfileFlags(parent, true)
}

func init() {
	rootCmd.AddCommand(selectCmd)
	selectCmd.AddCommand(selectNumCmd, selectCatCmd)
	addSelectionFlags(selectCmd)
}
