package table

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Workbook parts, decoded with encoding/xml struct tags. Tags carry no
// namespace so both prefixed and default-namespace documents match.
type (
	xlsxWorkbook struct {
		Sheets []struct {
			Name string `xml:"name,attr"`
			ID   int    `xml:"sheetId,attr"`
			RID  string `xml:"id,attr"`
		} `xml:"sheets>sheet"`
	}
	xlsxRels struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	// xlsxText is a <si> or <is> element: plain <t> or rich-text runs.
	xlsxText struct {
		T    string `xml:"t"`
		Runs []struct {
			T string `xml:"t"`
		} `xml:"r"`
	}
	xlsxSST struct {
		Items []xlsxText `xml:"si"`
	}
	xlsxSheet struct {
		Rows []struct {
			Cells []struct {
				Ref    string    `xml:"r,attr"`
				Type   string    `xml:"t,attr"`
				V      string    `xml:"v"`
				Inline *xlsxText `xml:"is"`
			} `xml:"c"`
		} `xml:"sheetData>row"`
	}
)

func (x xlsxText) String() string {
	if len(x.Runs) == 0 {
		return x.T
	}
	var b strings.Builder
	for _, r := range x.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

// readXLSX extracts every row of one worksheet as text records. The sheet is
// chosen by name (case-insensitive) or by 1-based sheetId, defaulting to the first.
func readXLSX(file, sheetName string, sheetIndex int) ([][]string, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	var wb xlsxWorkbook
	if err := decodePart(&zr.Reader, "xl/workbook.xml", &wb); err != nil {
		return nil, err
	}
	var rels xlsxRels
	if err := decodePart(&zr.Reader, "xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = partName(r.Target)
	}

	if sheetIndex <= 0 {
		sheetIndex = 1
	}
	part := fmt.Sprintf("xl/worksheets/sheet%d.xml", sheetIndex)
	var names []string
	found := false
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
		if found {
			continue
		}
		if (sheetName != "" && strings.EqualFold(s.Name, sheetName)) || (sheetName == "" && s.ID == sheetIndex) {
			found = true
			if t, ok := targets[s.RID]; ok {
				part = t
			}
		}
	}
	if sheetName != "" && !found {
		return nil, fmt.Errorf("sheet %q not found (available: %s): %w",
			sheetName, strings.Join(names, ", "), ErrInvalidArgument)
	}

	var shared xlsxSST
	if err := decodePart(&zr.Reader, "xl/sharedStrings.xml", &shared); err != nil {
		return nil, err
	}
	var sheet xlsxSheet
	if err := decodePart(&zr.Reader, part, &sheet); err != nil {
		return nil, err
	}
	if sheet.Rows == nil {
		if _, err := zr.Open(part); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("worksheet %s missing: %w", part, ErrInvalidArgument)
		}
	}

	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		var rec []string
		for _, c := range row.Cells {
			col := columnIndex(c.Ref)
			if col < 0 {
				col = len(rec)
			}
			for len(rec) <= col {
				rec = append(rec, "")
			}
			switch c.Type {
			case "s":
				var i int
				if _, err := fmt.Sscan(c.V, &i); err == nil && i >= 0 && i < len(shared.Items) {
					rec[col] = shared.Items[i].String()
				}
			case "inlineStr":
				if c.Inline != nil {
					rec[col] = c.Inline.String()
				}
			default:
				rec[col] = c.V
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodePart unmarshals one zip entry into v. A missing entry leaves v untouched.
func decodePart(zr *zip.Reader, name string, v any) error {
	f, err := zr.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// partName maps a relationship target to its zip entry under xl/.
func partName(target string) string {
	return path.Join("xl", strings.TrimPrefix(strings.TrimPrefix(target, "/"), "xl/"))
}

// columnIndex turns a cell reference like "C12" into a 0-based column index,
// or -1 when the reference has no letters.
func columnIndex(ref string) int {
	idx := 0
	for _, r := range ref {
		switch {
		case r >= 'A' && r <= 'Z':
			idx = idx*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			idx = idx*26 + int(r-'a') + 1
		default:
			return idx - 1
		}
	}
	return idx - 1
}
