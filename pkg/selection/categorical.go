package selection

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/KaramelBytes/edakit/pkg/profile"
	"github.com/KaramelBytes/edakit/pkg/stats"
	"github.com/KaramelBytes/edakit/pkg/table"
)

// reasonTooFewGroups is reported when a column does not split the target in two.
const reasonTooFewGroups = "fewer than 2 non-empty groups"

// CategoricalScore is the group-difference test of one candidate column.
type CategoricalScore struct {
	Column    string     `json:"column" yaml:"column"`
	Test      stats.Test `json:"test,omitempty" yaml:"test,omitempty"`
	Statistic float64    `json:"statistic" yaml:"statistic"`
	PValue    float64    `json:"p_value" yaml:"p_value"`
	Groups    int        `json:"groups" yaml:"groups"`
	Levels    []string   `json:"levels" yaml:"levels"`
	N         int        `json:"n" yaml:"n"`
	Included  bool       `json:"included" yaml:"included"`
	Reason    string     `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// MarshalJSON writes an infinite statistic as a string, which plain JSON numbers cannot hold.
func (s CategoricalScore) MarshalJSON() ([]byte, error) {
	type plain CategoricalScore
	out := struct {
		plain
		Statistic any `json:"statistic"`
	}{plain: plain(s), Statistic: s.Statistic}
	if math.IsInf(s.Statistic, 0) || math.IsNaN(s.Statistic) {
		out.Statistic = strconv.FormatFloat(s.Statistic, 'g', -1, 64)
	}
	return json.Marshal(out)
}

// CategoricalResult holds one score per candidate, in table order.
type CategoricalResult struct {
	Target  string             `json:"target" yaml:"target"`
	Options CategoricalOptions `json:"options" yaml:"options"`
	Scores  []CategoricalScore `json:"scores" yaml:"scores"`
}

// SelectCategorical tests every binary or nominal column for a difference in the target.
// As in SelectNumeric, nulls are dropped pairwise per column rather than across
// the whole table.
func SelectCategorical(t *table.Table, target string, opt CategoricalOptions) (*CategoricalResult, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	tcol, ty, err := resolveTarget(t, target, opt.Profile, opt.Typing)
	if err != nil {
		return nil, err
	}
	res := &CategoricalResult{Target: target, Options: opt}
	for _, c := range candidates(t, target, ty, profile.Category.IsCategorical) {
		s := scoreCategorical(c, tcol, opt)
		if !s.Included {
			log.Debug().Str("column", s.Column).Str("reason", s.Reason).Msg("categorical column excluded")
		}
		res.Scores = append(res.Scores, s)
	}
	return res, nil
}

func scoreCategorical(c, target *table.Column, opt CategoricalOptions) CategoricalScore {
	levels, groups := Groups(c, target)
	s := CategoricalScore{Column: c.Name(), Groups: len(groups), Levels: levels}
	for _, g := range groups {
		s.N += len(g)
	}
	var (
		res *stats.Result
		err error
	)
	switch {
	case len(groups) < 2:
		s.Reason = reasonTooFewGroups
		return s
	case len(groups) == 2:
		s.Test = stats.TestMannWhitneyU
		res, err = stats.MannWhitneyU(groups[0], groups[1])
	default:
		s.Test = stats.TestANOVA
		res, err = stats.OneWayANOVA(groups...)
	}
	if err != nil {
		s.Reason = reasonFor(err)
		return s
	}
	s.Statistic, s.PValue = res.Statistic, res.PValue
	if s.PValue <= opt.MaxPValue {
		s.Included = true
	} else {
		s.Reason = fmt.Sprintf("p-value %.3g above %.3g", s.PValue, opt.MaxPValue)
	}
	return s
}

// Groups splits the target values by the levels of c, over rows where both are present.
// Levels are returned in first-appearance order with their matching groups.
func Groups(c, target *table.Column) ([]string, [][]float64) {
	var (
		levels []string
		groups [][]float64
	)
	index := map[string]int{}
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) || target.IsNull(i) {
			continue
		}
		k := c.Key(i)
		gi, ok := index[k]
		if !ok {
			gi = len(levels)
			index[k] = gi
			levels = append(levels, k)
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], target.Float(i))
	}
	return levels, groups
}

// Selected returns the included scores ordered by p-value ascending.
// Ties keep table order.
func (r *CategoricalResult) Selected() []CategoricalScore {
	var out []CategoricalScore
	for _, s := range r.Scores {
		if s.Included {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PValue < out[j].PValue })
	return out
}

// Columns returns the names of the selected columns.
func (r *CategoricalResult) Columns() []string {
	sel := r.Selected()
	names := make([]string, len(sel))
	for i, s := range sel {
		names[i] = s.Column
	}
	return names
}

// Excluded returns the scores that were not selected, in table order.
func (r *CategoricalResult) Excluded() []CategoricalScore {
	var out []CategoricalScore
	for _, s := range r.Scores {
		if !s.Included {
			out = append(out, s)
		}
	}
	return out
}

// Markdown renders the result as a compact report.
func (r *CategoricalResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[CATEGORICAL FEATURE SELECTION]\n")
	b.WriteString(fmt.Sprintf("Target: %s\n", r.Target))
	b.WriteString(fmt.Sprintf("Threshold: p-value <= %.3g\n", r.Options.MaxPValue))
	b.WriteString(fmt.Sprintf("Candidates: %d\n\n", len(r.Scores)))

	b.WriteString("[SELECTED]\n")
	sel := r.Selected()
	if len(sel) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range sel {
		b.WriteString(fmt.Sprintf("- %s: %s statistic=%.4g p=%.3g (groups=%d, n=%d)\n",
			s.Column, s.Test, s.Statistic, s.PValue, s.Groups, s.N))
	}
	if ex := r.Excluded(); len(ex) > 0 {
		b.WriteString("\n[EXCLUDED]\n")
		for _, s := range ex {
			if s.Test != "" {
				b.WriteString(fmt.Sprintf("- %s (%s): %s\n", s.Column, s.Test, s.Reason))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: %s\n", s.Column, s.Reason))
		}
	}
	return b.String()
}
