// Package selection picks the numeric and categorical features of a table that are
// statistically related to a continuous regression target.
//
// Numeric candidates are scored with Pearson's r. Categorical candidates split the
// target into one group per level and are scored with Mann–Whitney U (two groups)
// or one-way ANOVA (three or more). Columns that cannot be scored stay in the
// result with Included=false and a reason.
package selection

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/KaramelBytes/edakit/pkg/profile"
	"github.com/KaramelBytes/edakit/pkg/table"
)

var validate = validator.New()

// NumericOptions controls SelectNumeric.
type NumericOptions struct {
	// MinCorrelation is the smallest |r| kept.
	MinCorrelation float64 `json:"min_correlation" yaml:"min_correlation" validate:"gte=0,lte=1"`
	// MaxPValue is the largest p-value kept.
	MaxPValue float64         `json:"max_p_value" yaml:"max_p_value" validate:"gte=0,lte=1"`
	Profile   profile.Options `json:"profile" yaml:"profile"`
	// Typing, when set, is used instead of classifying the table again.
	Typing profile.Typing `json:"-" yaml:"-"`
}

// DefaultNumericOptions returns the default thresholds.
func DefaultNumericOptions() NumericOptions {
	return NumericOptions{MinCorrelation: 0.4, MaxPValue: 0.05, Profile: profile.DefaultOptions()}
}

// Validate checks the thresholds.
func (o NumericOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("numeric options: %v: %w", err, table.ErrInvalidArgument)
	}
	return nil
}

// accepts applies both thresholds to a score and explains a rejection.
func (o NumericOptions) accepts(r, p float64) (bool, string) {
	if abs(r) < o.MinCorrelation {
		return false, fmt.Sprintf("|r| %.3f below %.3g", abs(r), o.MinCorrelation)
	}
	if p > o.MaxPValue {
		return false, fmt.Sprintf("p-value %.3g above %.3g", p, o.MaxPValue)
	}
	return true, ""
}

// CategoricalOptions controls SelectCategorical.
type CategoricalOptions struct {
	// MaxPValue is the largest p-value kept.
	MaxPValue float64         `json:"max_p_value" yaml:"max_p_value" validate:"gte=0,lte=1"`
	Profile   profile.Options `json:"profile" yaml:"profile"`
	Typing    profile.Typing  `json:"-" yaml:"-"`
}

// DefaultCategoricalOptions returns the default threshold.
func DefaultCategoricalOptions() CategoricalOptions {
	return CategoricalOptions{MaxPValue: 0.05, Profile: profile.DefaultOptions()}
}

// Validate checks the threshold.
func (o CategoricalOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("categorical options: %v: %w", err, table.ErrInvalidArgument)
	}
	return nil
}

// resolveTarget checks the target is a numeric column classified continuous and
// returns it together with the typing used for candidate selection.
func resolveTarget(t *table.Table, target string, popt profile.Options, ty profile.Typing) (*table.Column, profile.Typing, error) {
	if t == nil {
		return nil, nil, fmt.Errorf("nil table: %w", table.ErrInvalidArgument)
	}
	if target == "" {
		return nil, nil, fmt.Errorf("target column is required: %w", table.ErrInvalidArgument)
	}
	col, ok := t.Column(target)
	if !ok {
		return nil, nil, fmt.Errorf("target column %q not found: %w", target, table.ErrInvalidArgument)
	}
	if !col.IsNumeric() {
		return nil, nil, fmt.Errorf("target column %q has dtype %s, want numeric: %w", target, col.DType(), table.ErrInvalidArgument)
	}
	if ty == nil {
		var err error
		if ty, err = profile.Classify(t, popt); err != nil {
			return nil, nil, err
		}
	}
	cat, ok := ty.CategoryOf(target)
	if !ok {
		return nil, nil, fmt.Errorf("target column %q missing from typing: %w", target, table.ErrInvalidArgument)
	}
	if cat != profile.Continuous {
		return nil, nil, fmt.Errorf("target column %q is %s, want continuous: %w", target, cat, table.ErrInvalidArgument)
	}
	return col, ty, nil
}

// candidates returns the columns whose category passes keep, in table order, without the target.
func candidates(t *table.Table, target string, ty profile.Typing, keep func(profile.Category) bool) []*table.Column {
	var out []*table.Column
	for _, c := range t.Columns() {
		if c.Name() == target {
			continue
		}
		cat, ok := ty.CategoryOf(c.Name())
		if ok && keep(cat) {
			out = append(out, c)
		}
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
