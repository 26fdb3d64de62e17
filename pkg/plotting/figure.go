// Package plotting renders figures for already computed feature selections.
//
// Nothing here decides which columns matter: Numeric draws the columns a
// selection.NumericResult kept and Categorical draws the columns a
// selection.CategoricalResult kept. The only computation is the Gaussian kernel
// density estimate used to draw distributions.
package plotting

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/KaramelBytes/edakit/pkg/table"
)

// Kind selects how categorical distributions are drawn.
type Kind string

const (
	KDE       Kind = "kde"
	Histogram Kind = "hist"
)

// PlotOptions controls layout and rendering.
type PlotOptions struct {
	// Columns restricts plotting to these selected columns, in this order.
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	// Individual draws one panel per level instead of overlaying all levels.
	Individual bool `json:"individual" yaml:"individual"`
	Kind       Kind `json:"kind" yaml:"kind" validate:"omitempty,oneof=kde hist"`
	Bins       int  `json:"bins" yaml:"bins" validate:"gte=0"`
	// PanelWidth and PanelHeight size a single panel.
	PanelWidth  vg.Length `json:"panel_width" yaml:"panel_width" validate:"gte=0"`
	PanelHeight vg.Length `json:"panel_height" yaml:"panel_height" validate:"gte=0"`
}

// DefaultOptions returns KDE panels of 4x4 inches.
func DefaultOptions() PlotOptions {
	return PlotOptions{Kind: KDE, Bins: 20, PanelWidth: 4 * vg.Inch, PanelHeight: 4 * vg.Inch}
}

var validate = validator.New()

func (o PlotOptions) normalized() (PlotOptions, error) {
	if err := validate.Struct(o); err != nil {
		return o, fmt.Errorf("plot options: %v: %w", err, table.ErrInvalidArgument)
	}
	d := DefaultOptions()
	if o.Kind == "" {
		o.Kind = d.Kind
	}
	if o.Bins == 0 {
		o.Bins = d.Bins
	}
	if o.PanelWidth == 0 {
		o.PanelWidth = d.PanelWidth
	}
	if o.PanelHeight == 0 {
		o.PanelHeight = d.PanelHeight
	}
	return o, nil
}

// Figure is a row of panels drawn side by side.
type Figure struct {
	// Name identifies the figure, e.g. "numeric-1"; used for file names.
	Name   string
	Panels []*plot.Plot

	panelW, panelH vg.Length
}

func newFigure(name string, opt PlotOptions) *Figure {
	return &Figure{Name: name, panelW: opt.PanelWidth, panelH: opt.PanelHeight}
}

// Size returns the full figure dimensions.
func (f *Figure) Size() (vg.Length, vg.Length) {
	return f.panelW * vg.Length(len(f.Panels)), f.panelH
}

// Render draws the figure in the given format (png, svg, pdf, ...).
func (f *Figure) Render(format string) (io.WriterTo, error) {
	if len(f.Panels) == 0 {
		return nil, fmt.Errorf("figure %s has no panels: %w", f.Name, table.ErrInvalidArgument)
	}
	w, h := f.Size()
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("figure %s: %w", f.Name, err)
	}
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(f.Panels),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{f.Panels}, tiles, draw.New(c))
	for i, p := range f.Panels {
		p.Draw(canvases[0][i])
	}
	return c, nil
}

// WriteTo writes the figure as PNG.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	c, err := f.Render("png")
	if err != nil {
		return 0, err
	}
	return c.WriteTo(w)
}

// Save writes the figure to path; the extension picks the format. The file is
// replaced atomically.
func (f *Figure) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}
	c, err := f.Render(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return fmt.Errorf("figure %s: %w", f.Name, err)
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}

// fade returns c with the given alpha.
func fade(c color.Color, alpha uint8) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = alpha
	return n
}

// pick returns the names to draw: every selected name, or the requested ones that were selected.
func pick(selected, requested []string) []string {
	if len(requested) == 0 {
		return selected
	}
	ok := make(map[string]bool, len(selected))
	for _, s := range selected {
		ok[s] = true
	}
	var out []string
	for _, r := range requested {
		if ok[r] {
			out = append(out, r)
		}
	}
	return out
}

// chunk splits names into groups of at most n.
func chunk(names []string, n int) [][]string {
	var out [][]string
	for len(names) > 0 {
		k := n
		if len(names) < k {
			k = len(names)
		}
		out = append(out, names[:k])
		names = names[k:]
	}
	return out
}
