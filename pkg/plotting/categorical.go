package plotting

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/KaramelBytes/edakit/pkg/selection"
	"github.com/KaramelBytes/edakit/pkg/table"
)

const (
	// CombinedPanels is the number of overlay panels per figure.
	CombinedPanels = 2
	// IndividualPanels is the number of per-level panels per figure.
	IndividualPanels = 4

	densityPoints = 128
)

// Categorical draws the target distribution per level of every selected column.
// In combined mode each column gets one panel with all levels overlaid; in
// individual mode each level gets its own panel.
func Categorical(t *table.Table, res *selection.CategoricalResult, opt PlotOptions) ([]*Figure, error) {
	if t == nil || res == nil {
		return nil, fmt.Errorf("table and categorical result are required: %w", table.ErrInvalidArgument)
	}
	opt, err := opt.normalized()
	if err != nil {
		return nil, err
	}
	target, ok := t.Column(res.Target)
	if !ok {
		return nil, fmt.Errorf("target column %q not in table: %w", res.Target, table.ErrInvalidArgument)
	}
	scores := make(map[string]selection.CategoricalScore, len(res.Scores))
	for _, s := range res.Scores {
		scores[s.Column] = s
	}
	names := pick(res.Columns(), opt.Columns)
	cols := make([]scoredColumn, len(names))
	for i, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not in table: %w", name, table.ErrInvalidArgument)
		}
		cols[i] = scoredColumn{col: c, score: scores[name]}
	}
	if opt.Individual {
		return individualFigures(cols, target, opt)
	}
	return combinedFigures(cols, target, opt)
}

// CategoricalLabel annotates a panel with the column and its test p-value.
func CategoricalLabel(s selection.CategoricalScore) string {
	return fmt.Sprintf("%s\np-value = %.3g", s.Column, s.PValue)
}

type scoredColumn struct {
	col   *table.Column
	score selection.CategoricalScore
}

func combinedFigures(cols []scoredColumn, target *table.Column, opt PlotOptions) ([]*Figure, error) {
	var figs []*Figure
	var fig *Figure
	for i, sc := range cols {
		col := sc.col
		if i%CombinedPanels == 0 {
			fig = newFigure(fmt.Sprintf("categorical-%d", i/CombinedPanels+1), opt)
			figs = append(figs, fig)
		}
		p := plot.New()
		p.Title.Text = col.Name()
		p.X.Label.Text = CategoricalLabel(sc.score)
		p.Y.Label.Text = "density"
		levels, groups := selection.Groups(col, target)
		for li, g := range groups {
			if err := addDistribution(p, g, li, levels[li], opt); err != nil {
				return nil, fmt.Errorf("%s=%s: %w", col.Name(), levels[li], err)
			}
		}
		p.Legend.Top = true
		fig.Panels = append(fig.Panels, p)
	}
	return figs, nil
}

func individualFigures(cols []scoredColumn, target *table.Column, opt PlotOptions) ([]*Figure, error) {
	var figs []*Figure
	for _, sc := range cols {
		col := sc.col
		levels, groups := selection.Groups(col, target)
		var fig *Figure
		for li, g := range groups {
			if li%IndividualPanels == 0 {
				fig = newFigure(fmt.Sprintf("%s-%d", col.Name(), li/IndividualPanels+1), opt)
				figs = append(figs, fig)
			}
			p := plot.New()
			p.Title.Text = fmt.Sprintf("%s: %s", col.Name(), levels[li])
			p.X.Label.Text = target.Name()
			if li%IndividualPanels == 0 {
				p.Y.Label.Text = "density\n" + CategoricalLabel(sc.score)
			}
			if err := addDistribution(p, g, li, "", opt); err != nil {
				return nil, fmt.Errorf("%s=%s: %w", col.Name(), levels[li], err)
			}
			fig.Panels = append(fig.Panels, p)
		}
	}
	return figs, nil
}

// addDistribution draws one group as a filled density or a normalized histogram.
// A group too small for a density is skipped.
func addDistribution(p *plot.Plot, values []float64, idx int, legend string, opt PlotOptions) error {
	c := plotutil.Color(idx)
	switch opt.Kind {
	case Histogram:
		h, err := plotter.NewHist(plotter.Values(values), opt.Bins)
		if err != nil {
			return err
		}
		h.Normalize(1)
		h.FillColor = fade(c, 96)
		h.LineStyle.Color = c
		p.Add(h)
		if legend != "" {
			p.Legend.Add(legend, h)
		}
	default:
		xys, err := Density(values, densityPoints)
		if errors.Is(err, table.ErrInsufficientData) {
			log.Debug().Str("level", legend).Int("n", len(values)).Msg("density skipped")
			return nil
		}
		if err != nil {
			return err
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.Color = c
		l.FillColor = fade(c, 64)
		p.Add(l)
		if legend != "" {
			p.Legend.Add(legend, l)
		}
	}
	return nil
}
