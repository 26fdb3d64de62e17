package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/edakit/pkg/profile"
)

var (
	descCategorical int
	descContinuous  float64
	descTypingOnly  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Profile every column and suggest its statistical type",
	Args:  cobra.ExactArgs(1),
	RunE: instrumented("describe", func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := loadTable(path)
		if err != nil {
			return err
		}
		opt := profileOptions(cmd)
		p, err := profile.Describe(t, opt)
		if err != nil {
			return err
		}
		mtr.ObserveProfile(p)
		log.Info().Msg(p.Summary())
		if descTypingOnly {
			return writeReport(cmd, "typing", path, typingReport(p.Typing()))
		}
		return writeReport(cmd, "profile", path, p)
	}),
}

// profileOptions applies --categorical-threshold/--continuous-threshold over config.
func profileOptions(cmd *cobra.Command) profile.Options {
	opt := profile.DefaultOptions()
	if cfg != nil {
		opt = cfg.ProfileOptions()
	}
	if cmd.Flags().Changed("categorical-threshold") {
		opt.CategoricalThreshold = descCategorical
	}
	if cmd.Flags().Changed("continuous-threshold") {
		opt.ContinuousThreshold = descContinuous
	}
	return opt
}

// typingReport renders a Typing on its own.
type typingReport profile.Typing

func (ty typingReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[SUGGESTED TYPES]\n")
	for _, c := range profile.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c, strings.Join(ty[c], ", "))
	}
	return b.String()
}

func addProfileFlags(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.IntVar(&descCategorical, "categorical-threshold", 10, "largest cardinality treated as nominal (overrides config)")
	fs.Float64Var(&descContinuous, "continuous-threshold", 0.1, "cardinality ratio above which numeric columns are continuous (overrides config)")
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addInputFlags(describeCmd.Flags())
	addProfileFlags(describeCmd, false)
	describeCmd.Flags().BoolVar(&descTypingOnly, "typing", false, "only print the column names grouped by suggested type")
}
