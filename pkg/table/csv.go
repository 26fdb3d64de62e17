package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// ReadOptions controls how delimited and spreadsheet files are turned into a Table.
type ReadOptions struct {
	// Delimiter for CSV. If 0, inferred from the file extension (',' or '\t').
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// DecimalSeparator, when set, rewrites locale-formatted numeric cells
	// (e.g. "1.000,5" with ',' decimal and '.' thousands) before type detection.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// NullValues are cell texts treated as missing. Nil means DefaultNullValues.
	NullValues []string
	// SheetName / SheetIndex select the worksheet of an .xlsx file (1-based index).
	SheetName  string
	SheetIndex int
}

// DefaultNullValues lists the cell texts treated as missing by default.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// ReadCSV parses delimited text with a header row.
func ReadCSV(r io.Reader, opt ReadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = ','
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}
		records = append(records, rec)
		if opt.MaxRows > 0 && len(records) > opt.MaxRows {
			break
		}
	}
	return fromRecords(records, opt)
}

// fromRecords builds a table from a header row followed by data rows.
// Type detection and null handling are delegated to gota.
func fromRecords(records [][]string, opt ReadOptions) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return New()
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	rows := records[1:]
	if opt.MaxRows > 0 && len(rows) > opt.MaxRows {
		rows = rows[:opt.MaxRows]
	}
	if len(rows) == 0 {
		cols := make([]*Column, len(header))
		for i, h := range header {
			cols[i] = Strings(h, nil)
		}
		return New(cols...)
	}
	nulls := opt.NullValues
	if nulls == nil {
		nulls = DefaultNullValues
	}
	ncol := len(header)
	normalized := make([][]string, 0, len(rows)+1)
	normalized = append(normalized, header)
	for _, rec := range rows {
		row := make([]string, ncol)
		copy(row, rec)
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
			if opt.DecimalSeparator != 0 && !isNullText(row[j], nulls) {
				if x, ok := parseNumeric(row[j], opt); ok {
					row[j] = strconv.FormatFloat(x, 'f', -1, 64)
				}
			}
		}
		normalized = append(normalized, row)
	}
	df := dataframe.LoadRecords(normalized,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(nulls),
	)
	return FromDataFrame(df)
}

func isNullText(s string, nulls []string) bool {
	for _, n := range nulls {
		if s == n {
			return true
		}
	}
	return false
}

// parseNumeric reads a locale-formatted number using the configured separators.
func parseNumeric(s string, opt ReadOptions) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
