package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/KaramelBytes/edakit/pkg/profile"
	"github.com/KaramelBytes/edakit/pkg/stats"
	"github.com/KaramelBytes/edakit/pkg/table"
)

// NumericScore is the Pearson score of one candidate column against the target.
type NumericScore struct {
	Column      string  `json:"column" yaml:"column"`
	Correlation float64 `json:"correlation" yaml:"correlation"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	N           int     `json:"n" yaml:"n"`
	Included    bool    `json:"included" yaml:"included"`
	Reason      string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NumericResult holds one score per candidate, in table order.
type NumericResult struct {
	Target  string         `json:"target" yaml:"target"`
	Options NumericOptions `json:"options" yaml:"options"`
	Scores  []NumericScore `json:"scores" yaml:"scores"`
}

// SelectNumeric scores every discrete or continuous column against target.
// Nulls are dropped pairwise: each column is correlated over the rows where both
// it and the target are present, so N can differ between scores. Rows missing in
// other columns are not dropped.
func SelectNumeric(t *table.Table, target string, opt NumericOptions) (*NumericResult, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	tcol, ty, err := resolveTarget(t, target, opt.Profile, opt.Typing)
	if err != nil {
		return nil, err
	}
	res := &NumericResult{Target: target, Options: opt}
	for _, c := range candidates(t, target, ty, profile.Category.IsNumeric) {
		s := scoreNumeric(c, tcol, opt)
		if !s.Included {
			log.Debug().Str("column", s.Column).Str("reason", s.Reason).Msg("numeric column excluded")
		}
		res.Scores = append(res.Scores, s)
	}
	return res, nil
}

func scoreNumeric(c, target *table.Column, opt NumericOptions) NumericScore {
	s := NumericScore{Column: c.Name()}
	if !c.IsNumeric() {
		s.Reason = fmt.Sprintf("dtype %s cannot be correlated", c.DType())
		return s
	}
	x, y := pairs(c, target)
	s.N = len(x)
	res, err := stats.Pearson(x, y)
	if err != nil {
		s.Reason = reasonFor(err)
		return s
	}
	s.Correlation, s.PValue = res.Statistic, res.PValue
	s.Included, s.Reason = opt.accepts(res.Statistic, res.PValue)
	return s
}

// pairs returns the values of c and target on rows where both are present.
func pairs(c, target *table.Column) ([]float64, []float64) {
	var x, y []float64
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) || target.IsNull(i) {
			continue
		}
		x = append(x, c.Float(i))
		y = append(y, target.Float(i))
	}
	return x, y
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		return "insufficient data: " + err.Error()
	case errors.Is(err, stats.ErrZeroVariance):
		return "zero variance: " + err.Error()
	}
	return err.Error()
}

// Selected returns the included scores ordered by |r| descending.
// Ties keep table order.
func (r *NumericResult) Selected() []NumericScore {
	var out []NumericScore
	for _, s := range r.Scores {
		if s.Included {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return abs(out[i].Correlation) > abs(out[j].Correlation) })
	return out
}

// Columns returns the names of the selected columns.
func (r *NumericResult) Columns() []string {
	sel := r.Selected()
	names := make([]string, len(sel))
	for i, s := range sel {
		names[i] = s.Column
	}
	return names
}

// Excluded returns the scores that were not selected, in table order.
func (r *NumericResult) Excluded() []NumericScore {
	var out []NumericScore
	for _, s := range r.Scores {
		if !s.Included {
			out = append(out, s)
		}
	}
	return out
}

// Markdown renders the result as a compact report.
func (r *NumericResult) Markdown() string {
	var b strings.Builder
	b.WriteString("[NUMERIC FEATURE SELECTION]\n")
	b.WriteString(fmt.Sprintf("Target: %s\n", r.Target))
	b.WriteString(fmt.Sprintf("Thresholds: |r| >= %.3g, p-value <= %.3g\n", r.Options.MinCorrelation, r.Options.MaxPValue))
	b.WriteString(fmt.Sprintf("Candidates: %d\n\n", len(r.Scores)))

	b.WriteString("[SELECTED]\n")
	sel := r.Selected()
	if len(sel) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range sel {
		b.WriteString(fmt.Sprintf("- %s: r=%.3f p=%.3g (n=%d)\n", s.Column, s.Correlation, s.PValue, s.N))
	}
	if ex := r.Excluded(); len(ex) > 0 {
		b.WriteString("\n[EXCLUDED]\n")
		for _, s := range ex {
			b.WriteString(fmt.Sprintf("- %s: %s\n", s.Column, s.Reason))
		}
	}
	return b.String()
}
