package table

import (
	"math"
	"strconv"
	"time"
)

// DType is the storage type of a column.
type DType string

const (
	Int      DType = "int"
	Float    DType = "float"
	Bool     DType = "bool"
	String   DType = "string"
	Datetime DType = "datetime"
)

// Known reports whether d is one of the dtypes the profiler understands.
func (d DType) Known() bool {
	switch d {
	case Int, Float, Bool, String, Datetime:
		return true
	}
	return false
}

// Column is an immutable named vector with a null mask.
// Every row has a canonical text key (used for cardinality and grouping) and,
// for numeric and temporal dtypes, a float view (NaN when null).
type Column struct {
	name  string
	dtype DType
	keys  []string
	nums  []float64
	null  []bool
}

func newColumn(name string, dtype DType, n int) *Column {
	return &Column{
		name:  name,
		dtype: dtype,
		keys:  make([]string, n),
		nums:  make([]float64, n),
		null:  make([]bool, n),
	}
}

// Floats builds a float column; NaN marks a null.
func Floats(name string, vals []float64) *Column {
	c := newColumn(name, Float, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			c.setNull(i)
			continue
		}
		c.nums[i] = v
		c.keys[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return c
}

// Ints builds an int column. nulls may be nil; otherwise it must match vals in length.
func Ints(name string, vals []int, nulls []bool) *Column {
	c := newColumn(name, Int, len(vals))
	for i, v := range vals {
		if i < len(nulls) && nulls[i] {
			c.setNull(i)
			continue
		}
		c.nums[i] = float64(v)
		c.keys[i] = strconv.Itoa(v)
	}
	return c
}

// Bools builds a bool column; true maps to 1 and false to 0 in the numeric view.
func Bools(name string, vals []bool, nulls []bool) *Column {
	c := newColumn(name, Bool, len(vals))
	for i, v := range vals {
		if i < len(nulls) && nulls[i] {
			c.setNull(i)
			continue
		}
		if v {
			c.nums[i] = 1
		}
		c.keys[i] = strconv.FormatBool(v)
	}
	return c
}

// Strings builds a string column; the empty string marks a null.
func Strings(name string, vals []string) *Column {
	c := newColumn(name, String, len(vals))
	for i, v := range vals {
		if v == "" {
			c.setNull(i)
			continue
		}
		c.nums[i] = math.NaN()
		c.keys[i] = v
	}
	return c
}

// Times builds a datetime column; the zero time marks a null.
// The numeric view holds Unix seconds.
func Times(name string, vals []time.Time) *Column {
	c := newColumn(name, Datetime, len(vals))
	for i, v := range vals {
		if v.IsZero() {
			c.setNull(i)
			continue
		}
		c.nums[i] = float64(v.UnixNano()) / 1e9
		c.keys[i] = v.UTC().Format(time.RFC3339Nano)
	}
	return c
}

func (c *Column) setNull(i int) {
	c.null[i] = true
	c.nums[i] = math.NaN()
	c.keys[i] = ""
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// DType returns the storage type.
func (c *Column) DType() DType { return c.dtype }

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.keys) }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return c.null[i] }

// Float returns the numeric view of row i (NaN for nulls and string columns).
func (c *Column) Float(i int) float64 { return c.nums[i] }

// Key returns the canonical text of row i ("" for nulls).
func (c *Column) Key(i int) string { return c.keys[i] }

// IsNumeric reports whether the column has a numeric storage type. Bool counts as numeric.
func (c *Column) IsNumeric() bool {
	return c.dtype == Int || c.dtype == Float || c.dtype == Bool
}

// IsTemporal reports whether the column holds timestamps.
func (c *Column) IsTemporal() bool { return c.dtype == Datetime }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.null {
		if isNull {
			n++
		}
	}
	return n
}

// Levels returns the distinct non-null keys in order of first appearance.
func (c *Column) Levels() []string {
	seen := make(map[string]struct{})
	var out []string
	for i, k := range c.keys {
		if c.null[i] {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Cardinality returns the number of distinct non-null values.
func (c *Column) Cardinality() int { return len(c.Levels()) }
