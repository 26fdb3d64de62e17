package plotting

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/edakit/pkg/selection"
	"github.com/KaramelBytes/edakit/pkg/table"
)

// NumericPanels is the number of scatter panels per figure.
const NumericPanels = 4

// Numeric draws a scatter of every selected column against the target.
func Numeric(t *table.Table, res *selection.NumericResult, opt PlotOptions) ([]*Figure, error) {
	if t == nil || res == nil {
		return nil, fmt.Errorf("table and numeric result are required: %w", table.ErrInvalidArgument)
	}
	opt, err := opt.normalized()
	if err != nil {
		return nil, err
	}
	target, ok := t.Column(res.Target)
	if !ok {
		return nil, fmt.Errorf("target column %q not in table: %w", res.Target, table.ErrInvalidArgument)
	}
	scores := map[string]selection.NumericScore{}
	for _, s := range res.Selected() {
		scores[s.Column] = s
	}
	names := pick(res.Columns(), opt.Columns)
	if len(names) < len(opt.Columns) {
		log.Debug().Strs("requested", opt.Columns).Strs("plotted", names).Msg("unselected columns skipped")
	}

	var figs []*Figure
	for fi, group := range chunk(names, NumericPanels) {
		fig := newFigure(fmt.Sprintf("numeric-%d", fi+1), opt)
		for pi, name := range group {
			col, ok := t.Column(name)
			if !ok {
				return nil, fmt.Errorf("column %q not in table: %w", name, table.ErrInvalidArgument)
			}
			s := scores[name]
			p, err := scatterPanel(col, target, s, pi == 0)
			if err != nil {
				return nil, err
			}
			fig.Panels = append(fig.Panels, p)
		}
		figs = append(figs, fig)
	}
	return figs, nil
}

// NumericLabel is the x axis label of a scatter panel.
func NumericLabel(s selection.NumericScore) string {
	return fmt.Sprintf("%s\ncorr = %.3g | p-value = %.3g", s.Column, s.Correlation, s.PValue)
}

func scatterPanel(col, target *table.Column, s selection.NumericScore, first bool) (*plot.Plot, error) {
	var pts plotter.XYs
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) || target.IsNull(i) {
			continue
		}
		pts = append(pts, plotter.XY{X: col.Float(i), Y: target.Float(i)})
	}
	p := plot.New()
	p.X.Label.Text = NumericLabel(s)
	if first {
		p.Y.Label.Text = target.Name()
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter %s: %w", col.Name(), err)
	}
	sc.GlyphStyle.Color = fade(plotutil.Color(0), 160)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(2)
	p.Add(sc, plotter.NewGrid())
	return p, nil
}
