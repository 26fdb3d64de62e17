// Package profile classifies the columns of a table into suggested statistical types.
//
// The rules only look at dtype and cardinality, so they are cheap and deterministic:
//
//	cardinality 0 or 1               -> low-interest
//	cardinality 2                    -> binary
//	cardinality <= CategoricalThreshold -> nominal
//	numeric/datetime, ratio <= ContinuousThreshold -> discrete
//	numeric/datetime otherwise       -> continuous
//	anything else                    -> low-interest
//
// where ratio is the number of distinct non-null values divided by the row count.
package profile

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/KaramelBytes/edakit/pkg/table"
)

// Category is a suggested semantic type for a column.
type Category string

const (
	Binary      Category = "binary"
	Nominal     Category = "nominal"
	Discrete    Category = "discrete"
	Continuous  Category = "continuous"
	LowInterest Category = "low-interest"
)

// Categories lists every category in report order.
var Categories = []Category{Binary, Nominal, Discrete, Continuous, LowInterest}

// IsCategorical reports whether columns of this category are split into groups.
func (c Category) IsCategorical() bool { return c == Binary || c == Nominal }

// IsNumeric reports whether columns of this category are correlated directly.
func (c Category) IsNumeric() bool { return c == Discrete || c == Continuous }

// Options holds the classification thresholds.
type Options struct {
	// CategoricalThreshold is the largest cardinality still treated as nominal.
	CategoricalThreshold int `json:"categorical_threshold" yaml:"categorical_threshold" validate:"gte=2"`
	// ContinuousThreshold is the cardinality ratio above which numeric columns are continuous.
	ContinuousThreshold float64 `json:"continuous_threshold" yaml:"continuous_threshold" validate:"gte=0,lte=1"`
}

// DefaultOptions returns the thresholds used when none are configured.
func DefaultOptions() Options {
	return Options{CategoricalThreshold: 10, ContinuousThreshold: 0.1}
}

var validate = validator.New()

// Validate checks the thresholds.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("profile options: %v: %w", err, table.ErrInvalidArgument)
	}
	return nil
}

// Descriptor summarizes one column.
type Descriptor struct {
	Name             string      `json:"name" yaml:"name"`
	DType            table.DType `json:"dtype" yaml:"dtype"`
	NullCount        int         `json:"null_count" yaml:"null_count"`
	NullPct          float64     `json:"null_pct" yaml:"null_pct"`
	Cardinality      int         `json:"cardinality" yaml:"cardinality"`
	CardinalityRatio float64     `json:"cardinality_ratio" yaml:"cardinality_ratio"`
	Suggested        Category    `json:"suggested_type" yaml:"suggested_type"`
}

// Profile is the result of Describe.
type Profile struct {
	Rows    int          `json:"rows" yaml:"rows"`
	Options Options      `json:"options" yaml:"options"`
	Columns []Descriptor `json:"columns" yaml:"columns"`
}

// Describe computes one descriptor per column, in table order.
func Describe(t *table.Table, opt Options) (*Profile, error) {
	if t == nil {
		return nil, fmt.Errorf("nil table: %w", table.ErrInvalidArgument)
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	rows := t.Rows()
	if rows == 0 {
		return nil, fmt.Errorf("table has no rows: %w", table.ErrInsufficientData)
	}
	p := &Profile{Rows: rows, Options: opt}
	for _, c := range t.Columns() {
		if !c.DType().Known() {
			return nil, fmt.Errorf("column %q has dtype %q: %w", c.Name(), c.DType(), table.ErrUnsupportedType)
		}
		nulls := c.NullCount()
		card := c.Cardinality()
		d := Descriptor{
			Name:             c.Name(),
			DType:            c.DType(),
			NullCount:        nulls,
			NullPct:          float64(nulls) * 100 / float64(rows),
			Cardinality:      card,
			CardinalityRatio: float64(card) / float64(rows),
		}
		d.Suggested = classify(c, d.Cardinality, d.CardinalityRatio, opt)
		log.Debug().Str("column", d.Name).Int("cardinality", card).Str("type", string(d.Suggested)).Msg("column classified")
		p.Columns = append(p.Columns, d)
	}
	return p, nil
}

func classify(c *table.Column, card int, ratio float64, opt Options) Category {
	switch {
	case card <= 1:
		return LowInterest
	case card == 2:
		return Binary
	case card <= opt.CategoricalThreshold:
		return Nominal
	case c.IsNumeric() || c.IsTemporal():
		if ratio <= opt.ContinuousThreshold {
			return Discrete
		}
		return Continuous
	default:
		return LowInterest
	}
}

// Column returns the descriptor for name.
func (p *Profile) Column(name string) (Descriptor, bool) {
	for _, d := range p.Columns {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Typing groups column names by suggested category, preserving table order.
func (p *Profile) Typing() Typing {
	ty := make(Typing, len(Categories))
	for _, c := range Categories {
		ty[c] = []string{}
	}
	for _, d := range p.Columns {
		ty[d.Suggested] = append(ty[d.Suggested], d.Name)
	}
	return ty
}

// Summary is a one-line description of the thresholds applied.
func (p *Profile) Summary() string {
	return fmt.Sprintf("suggested types for %d rows: nominal categorical up to %d distinct values, continuous numeric above %.1f%% relative cardinality",
		p.Rows, p.Options.CategoricalThreshold, p.Options.ContinuousThreshold*100)
}

// Typing maps each category to its column names. Every category key is present.
type Typing map[Category][]string

// Classify describes the table and returns only the grouping.
func Classify(t *table.Table, opt Options) (Typing, error) {
	p, err := Describe(t, opt)
	if err != nil {
		return nil, err
	}
	return p.Typing(), nil
}

// CategoryOf returns the category a column was assigned.
func (ty Typing) CategoryOf(name string) (Category, bool) {
	for _, c := range Categories {
		for _, n := range ty[c] {
			if n == name {
				return c, true
			}
		}
	}
	return "", false
}

// Markdown renders the profile as a compact report.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET PROFILE]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(p.Columns)))
	b.WriteString(fmt.Sprintf("Thresholds: nominal <= %d distinct, continuous > %.1f%% cardinality\n\n",
		p.Options.CategoricalThreshold, p.Options.ContinuousThreshold*100))

	b.WriteString("[SCHEMA]\n")
	for _, d := range p.Columns {
		b.WriteString(fmt.Sprintf("- %s: %s (nulls %d, %.1f%%) — cardinality %d (%.2f%%) → %s\n",
			safeName(d.Name), d.DType, d.NullCount, d.NullPct, d.Cardinality, d.CardinalityRatio*100, d.Suggested))
	}

	b.WriteString("\n[SUGGESTED TYPES]\n")
	ty := p.Typing()
	for _, c := range Categories {
		names := ty[c]
		if len(names) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", c, strings.Join(names, ", ")))
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return strings.ReplaceAll(s, "\n", " ")
}
