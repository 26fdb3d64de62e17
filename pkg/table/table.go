package table

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is an in-memory dataset of equally long, uniquely named columns.
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a table. Column names must be unique and non-empty, and all columns
// must have the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil: %w", i, ErrInvalidArgument)
		}
		name := strings.TrimSpace(c.name)
		if name == "" {
			return nil, fmt.Errorf("column %d has no name: %w", i, ErrInvalidArgument)
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", name, ErrInvalidArgument)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d: %w", name, c.Len(), t.rows, ErrInvalidArgument)
		}
		t.index[name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Names returns column names in table order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Columns returns the columns in table order.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Column looks a column up by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// FromDataFrame converts a gota dataframe. String series whose non-null values all
// parse as timestamps become datetime columns.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("dataframe: %w", df.Err)
	}
	names := df.Names()
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := fromSeries(df.Col(name))
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

func fromSeries(s series.Series) (*Column, error) {
	n := s.Len()
	switch s.Type() {
	case series.Float:
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				vals[i] = math.NaN()
				continue
			}
			vals[i] = e.Float()
		}
		return Floats(s.Name, vals), nil
	case series.Int:
		vals := make([]int, n)
		nulls := make([]bool, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			v, err := e.Int()
			if e.IsNA() || err != nil {
				nulls[i] = true
				continue
			}
			vals[i] = v
		}
		return Ints(s.Name, vals, nulls), nil
	case series.Bool:
		vals := make([]bool, n)
		nulls := make([]bool, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			v, err := e.Bool()
			if e.IsNA() || err != nil {
				nulls[i] = true
				continue
			}
			vals[i] = v
		}
		return Bools(s.Name, vals, nulls), nil
	case series.String:
		vals := make([]string, n)
		for i := 0; i < n; i++ {
			e := s.Elem(i)
			if e.IsNA() {
				continue
			}
			vals[i] = strings.TrimSpace(e.String())
		}
		if times, ok := parseTimes(vals); ok {
			return Times(s.Name, times), nil
		}
		return Strings(s.Name, vals), nil
	default:
		return nil, fmt.Errorf("column %q has type %q: %w", s.Name, s.Type(), ErrUnsupportedType)
	}
}

// parseTimes succeeds only when at least one value is set and every non-empty value parses.
func parseTimes(vals []string) ([]time.Time, bool) {
	out := make([]time.Time, len(vals))
	seen := false
	for i, v := range vals {
		if v == "" {
			continue
		}
		ts, ok := parseTimeMaybe(v)
		if !ok {
			return nil, false
		}
		out[i] = ts
		seen = true
	}
	return out, seen
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
