package table

import (
	"archive/zip"
	"encoding/base64"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var csvRows = []string{
	"Group;Concentration (g/L);Temp (°F);Score;LocaleNumber;Category;Note",
	"A;0,5;70;10,0;1.000,0;alpha;first",
	"A;0,6;71;11,0;1.100,0;alpha;second",
	"A;0,55;69;9,5;0.900,0;beta;third",
	"B;0,7;75;10,5;1.050,0;alpha;fourth",
	"B;0,65;74;9,8;0.980,0;beta;fifth",
	"B;0,68;73;10,2;1.020,0;alpha;sixth",
	"A;0,52;68;8,8;0.880,0;gamma;seventh",
	"B;0,75;76;9,7;0.970,0;beta;eighth",
	"A;3,0;95;50,0;5.000,0;alpha;ninth",
	"B;0,66;72;10,1;1.010,0;gamma;tenth",
}

const xlsxFixtureBase64 = `
UEsDBBQAAAAIAMEwN1vYAxPv/wAAALYCAAATABwAW0NvbnRlbnRfVHlwZXNdLnhtbFVUCQADyjjSaMo40mh1eAsAAQQAAAAABAAAAAC1ks1OwzAQhO95CsvX
Kt60B4RQkh74OQKH8gDG3iRW/CfbLeHtcVIEEqIIpHJaWTOz32jlejsZTQ4YonK2oWtWUYJWOKls39Cn3V15SbdtUe9ePUaSvTY2dEjJXwFEMaDhkTmPNiud
C4an/Aw9eC5G3iNsquoChLMJbSrTvIO2BSH1DXZ8rxO5nbJyRAfUkZLro3fGNZR7r5XgKetwsPILqHyHsJxcPHFQPq6ygcIpyCyeZnxGH/JFgpJIHnlI99xk
I0waXlwYn50b2c97vunquk4JlE7sTY6w6ANyGQfEZDRbJjNc2dWvKiz+CMtYn7nLx/6/V9n8d5Ualm/YFm9QSwMECgAAAAAAxDA3WwAAAAAAAAAAAAAAAAMA
HAB4bC9VVAkAA9A40mjyONJodXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIAMQwN1tM2kS6xQAAAEkBAAAPABwAeGwvd29ya2Jvb2sueG1sVVQJAAPQONJo0DjS
aHV4CwABBAAAAAAEAAAAAI1Qu27DMAzc/RUC90aOhyIwZGcJAnhvP0CxaVuIRRqk+vj8qjEMZOjQ7Y7k3ZF05++4mE8UDUwNHA8lGKSeh0BTA+9v15cTnNvC
fbHcb8x3k8dJG5hTWmtrtZ8xej3wipQ7I0v0KVOZrK6CftAZMcXFVmX5aqMPBJtDLf/x4HEMPV64/4hIaTMRXHzKy+ocVoW2MMY9QvQX7sSQj9hANxELgnnU
uiHfB0bqkIF0wxHsH5KLT/5JUD0Jqk3g7J7n7P6WtvgBUEsDBAoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABwAeGwvd29ya3NoZWV0cy9VVAkAA+s40mjyONJo
dXgLAAEEAAAAAAQAAAAAUEsDBBQAAAAIANIwN1u3fFZsqwIAAIASAAAYABwAeGwvd29ya3NoZWV0cy9zaGVldDIueG1sVVQJAAPrONJo6zjSaHV4CwABBAAA
AAAEAAAAAJ3YT26bQBiH4X1OgVilkguD/wEVJkoMzibKJukBJngMqGYGDeMkvVXP0JN1nEhVQ/r7QCxx/BDsV9/gIbl6bY7Os9BdreTGDTzmOkIWal/LcuN+
f9x9jdyr9CJ5UfpHVwlhHPt+2W3cypj2m+93RSUa3nmqFdL+5aB0w4091KXftVrw/Rtqjv6csbXf8Fq66YXjJG8vZ9zw85E91urF0fb/u+/H9pXifHwduI7Z
uLU81lI8GO2mSd2liUlvtTq1iW/SxD+/4Bcf3Q1yWyULIY3mxn5e57L0777gs2zRWR5F0zqXv3/tCJwh/FAoLbDLkbtTBT+K+1PzJDTmO/jJuRGl0j8xvUX0
Xpn/XHDi22gf8837+ebgjNdEOmTYbEWkQipkRCKEAjYjWA6Zxxgpd0jyY1txogxyh1p3ZlSaRT/NYkIaZNhsTaRBKgyINAgFAZkGMi8YSIPkUBrkOlEouR/V
Ztlvs5zQBhk7NtTcILaOiTgIxdSI5vAKvXigDZJPwlBpEDNVrceVWfXLrMApb4gyyLBZSIRBKiS+4gyhgFw8c8g8tqLLIDk0Ncgd1EmbalSbdb/NekIbZOyK
Rk0NYuGSiINQPIuINvAKvTii2yA5MDWIHerDyDJhv0w4oQwytgzxdW0RCxdEGYTs2MyJNJB5bE6nQXJobJDr6teRbaJ+m2jCvQYZu8oQ39cWMSpohlBETg28
Qi8amBokS940VBrkOvFsNxzj4sT9OPGEwUHG3m6oJQ2xkPhplyEUU7e2HF6hF4d0HCQHljTERF1WI9ME7NPWlE2YHIgW1OfeQhZTvwagom/qOXaDGxxIh1Y2
CGU9dnqCz08P0I6Wmh+I7J2H2uZAFxJrYgaVvfcQ+6McO4/R29cdpENLHIRmYIVL/H+e9yT+34dJ6cUfUEsDBBQAAAAIAMcwN1sqMey0swAAAPgAAAAYABwA
eGwvd29ya3NoZWV0cy9zaGVldDEueG1sVVQJAAPWONJo1jjSaHV4CwABBAAAAAAEAAAAAE2P3WrDMAxG7/MURverkl6MUhyXwegLrHsA46iNqf+QxbLHr5OO
0cvzSfoO0qffGNQPcfU5jTDselCUXJ58uo3wfTm/HeBkOr1kvteZSFTbT3WEWaQcEaubKdq6y4VSm1wzRysN+Ya1MNlpO4oB933/jtH6BKZTSm/xpxW7UmPO
i+Lmhye3xK38MYCSEXwKPtGXMBjtq9FiSrCO5hwmYo1iNK4xur82bHWbBl88Gv+fMN0DUEsDBAoAAAAAAMYwN1sAAAAAAAAAAAAAAAAJABwAeGwvX3JlbHMv
VVQJAAPTONJo8jjSaHV4CwABBAAAAAAEAAAAAFBLAwQUAAAACADGMDdbCmPblLYAAACtAQAAGgAcAHhsL19yZWxzL3dvcmtib29rLnhtbC5yZWxzVVQJAAPT
ONJo0zjSaHV4CwABBAAAAAAEAAAAAL2QSwrCMBBA9z1FmL2dtgsRadqNCN1KPUBIpx/aJiGJv9sbBMWCgitXw/zePCYvr/PEzmTdoBWHNE6AkZK6GVTH4Vjv
Vxsoiyg/0CR8GHH9YBwLO8px6L03W0Qne5qFi7UhFTqttrPwIbUdGiFH0RFmSbJG+86AImJsgWVVw8FWTQqsvhn6Ba/bdpC00/I0k/IfruBF29H1RD5Ahe3I
c3iVHD5CGgcq4Fef7M8+2dMnx8XXi+gOUEsDBAoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABwAX3JlbHMvVVQJAAPNONJo8jjSaHV4CwABBAAAAAAEAAAAAFBL
AwQUAAAACADDMDdbDxvLDKoAAAAcAQAACwAcAF9yZWxzLy5yZWxzVVQJAAPNONJozTjSaHV4CwABBAAAAAAEAAAAAI3PsQ6CMBAG4J2naG6XgoMxxsJiTFgN
PkAtRyHQXtNWxbe3oxgHx8v9913+Y72YmT3Qh5GsgDIvgKFV1I1WC7i2580e6io7XnCWMUXCMLrA0o0NAoYY3YHzoAY0MuTk0KZNT97ImEavuZNqkhr5tih2
3H8aUGWMrVjWdAJ805XA2pfDf3jq+1HhidTdoI0/vnwlkiy9xihgmfmT/HQjmvKEAk8d+apklb0BUEsBAh4DFAAAAAgAwTA3W9gDE+//AAAAtgIAABMAGAAA
AAAAAQAAAKSBAAAAAFtDb250ZW50X1R5cGVzXS54bWxVVAUAA8o40mh1eAsAAQQAAAAABAAAAABQSwECHgMKAAAAAADEMDdbAAAAAAAAAAAAAAAAAwAYAAAA
AAAAABAA7UFMAQAAeGwvVVQFAAPQONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DFAAAAAgAxDA3W0zaRLrFAAAASQEAAA8AGAAAAAAAAQAAAKSBiQEAAHhsL3dv
cmtib29rLnhtbFVUBQAD0DjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAANIwN1sAAAAAAAAAAAAAAAAOABgAAAAAAAAAEADtQZcCAAB4bC93b3Jrc2hl
ZXRzL1VUBQAD6zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIANIwN1u3fFZsqwIAAIASAAAYABgAAAAAAAEAAACkgd8CAAB4bC93b3Jrc2hlZXRzL3No
ZWV0Mi54bWxVVAUAA+s40mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADHMDdbKjHstLMAAAD4AAAAGAAYAAAAAAABAAAApIHcBQAAeGwvd29ya3NoZWV0
cy9zaGVldDEueG1sVVQFAAPWONJodXgLAAEEAAAAAAQAAAAAUEsBAh4DCgAAAAAAxjA3WwAAAAAAAAAAAAAAAAkAGAAAAAAAAAAQAO1B4QYAAHhsL19yZWxz
L1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAxQAAAAIAMYwN1sKY9uUtgAAAK0BAAAaABgAAAAAAAEAAACkgSQHAAB4bC9fcmVscy93b3JrYm9vay54
bWwucmVsc1VUBQAD0zjSaHV4CwABBAAAAAAEAAAAAFBLAQIeAwoAAAAAAMMwN1sAAAAAAAAAAAAAAAAGABgAAAAAAAAAEADtQS4IAABfcmVscy9VVAUAA804
0mh1eAsAAQQAAAAABAAAAABQSwECHgMUAAAACADDMDdbDxvLDKoAAAAcAQAACwAYAAAAAAABAAAApIFuCAAAX3JlbHMvLnJlbHNVVAUAA8040mh1eAsAAQQA
AAAABAAAAABQSwUGAAAAAAoACgBTAwAAXQkAAAAA
`

func localeOptions() ReadOptions {
	return ReadOptions{DecimalSeparator: ',', ThousandsSeparator: '.'}
}

func TestReadCSVLocaleAndTypes(t *testing.T) {
	opt := localeOptions()
	opt.Delimiter = ';'
	tbl, err := ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	assertFixtureTable(t, tbl, 10)
}

func TestReadCSVMaxRows(t *testing.T) {
	opt := localeOptions()
	opt.Delimiter = ';'
	opt.MaxRows = 4
	tbl, err := ReadCSV(strings.NewReader(strings.Join(csvRows, "\n")), opt)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Rows() != 4 {
		t.Fatalf("rows = %d, want 4", tbl.Rows())
	}
}

func TestLoadFileXLSXSheetSelection(t *testing.T) {
	path := writeXLSXFixture(t)

	opt := localeOptions()
	opt.SheetName = "Data"
	byName, err := LoadFile(path, opt)
	if err != nil {
		t.Fatalf("LoadFile by name: %v", err)
	}
	assertFixtureTable(t, byName, 10)

	opt = localeOptions()
	opt.SheetIndex = 2
	byIndex, err := LoadFile(path, opt)
	if err != nil {
		t.Fatalf("LoadFile by index: %v", err)
	}
	assertFixtureTable(t, byIndex, 10)

	opt = localeOptions()
	opt.SheetName = "Missing"
	if _, err := LoadFile(path, opt); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing sheet err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadFileCSVNullsAndDatetime(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "customers.csv")
	content := "signup,plan,clv,active\n" +
		"2024-01-10,basic,100.5,true\n" +
		"2024-02-11,,220.0,false\n" +
		"2024-03-12,premium,NA,true\n" +
		",basic,180.25,\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := LoadFile(p, ReadOptions{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := map[string]DType{"signup": Datetime, "plan": String, "clv": Float, "active": Bool}
	for name, dt := range want {
		c := mustColumn(t, tbl, name)
		if c.DType() != dt {
			t.Errorf("%s dtype = %s, want %s", name, c.DType(), dt)
		}
		if c.NullCount() != 1 {
			t.Errorf("%s nulls = %d, want 1", name, c.NullCount())
		}
	}
	clv := mustColumn(t, tbl, "clv")
	if !math.IsNaN(clv.Float(2)) || clv.Float(3) != 180.25 {
		t.Fatalf("clv values = %v, %v", clv.Float(2), clv.Float(3))
	}
}

func TestLoadFileUnknownFormat(t *testing.T) {
	if _, err := LoadFile("report.parquet", ReadOptions{}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestNewValidatesColumns(t *testing.T) {
	tests := []struct {
		name string
		cols []*Column
	}{
		{"duplicate", []*Column{Floats("a", []float64{1}), Floats("a", []float64{2})}},
		{"ragged", []*Column{Floats("a", []float64{1, 2}), Floats("b", []float64{1})}},
		{"unnamed", []*Column{Floats(" ", []float64{1})}},
		{"nil", []*Column{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cols...); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestColumnLevelsAndNulls(t *testing.T) {
	c := Strings("state", []string{"CA", "", "NY", "CA", "TX", ""})
	got := c.Levels()
	want := []string{"CA", "NY", "TX"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("levels = %v, want %v", got, want)
	}
	if c.Cardinality() != 3 || c.NullCount() != 2 {
		t.Fatalf("cardinality=%d nulls=%d", c.Cardinality(), c.NullCount())
	}
	if c.IsNumeric() || c.IsTemporal() {
		t.Fatalf("string column reported numeric/temporal")
	}

	ts := Times("at", []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), {}})
	if !ts.IsTemporal() || !ts.IsNull(1) || ts.Float(0) != 1704067200 {
		t.Fatalf("unexpected datetime column state: %v %v", ts.IsNull(1), ts.Float(0))
	}
	b := Bools("flag", []bool{true, false}, []bool{false, true})
	if !b.IsNumeric() || b.Float(0) != 1 || !b.IsNull(1) {
		t.Fatalf("unexpected bool column state")
	}
}

func TestPartName(t *testing.T) {
	for target, want := range map[string]string{
		"/xl/worksheets/sheet1.xml": "xl/worksheets/sheet1.xml",
		"worksheets/data.xml":       "xl/worksheets/data.xml",
		"xl/styles.xml":             "xl/styles.xml",
	} {
		if got := partName(target); got != want {
			t.Errorf("partName(%q) = %q, want %q", target, got, want)
		}
	}
}

func assertFixtureTable(t *testing.T, tbl *Table, rows int) {
	t.Helper()
	if tbl.Rows() != rows {
		t.Fatalf("rows = %d, want %d", tbl.Rows(), rows)
	}
	names := tbl.Names()
	if len(names) != 7 || names[1] != "Concentration (g/L)" {
		t.Fatalf("names = %v", names)
	}
	score := mustColumn(t, tbl, "Score")
	if score.DType() != Float || score.Float(0) != 10 || score.Float(2) != 9.5 {
		t.Fatalf("score = %s %v %v", score.DType(), score.Float(0), score.Float(2))
	}
	locale := mustColumn(t, tbl, "LocaleNumber")
	if locale.DType() != Int || locale.Float(8) != 5000 {
		t.Fatalf("locale = %s %v", locale.DType(), locale.Float(8))
	}
	if temp := mustColumn(t, tbl, "Temp (°F)"); temp.DType() != Int {
		t.Fatalf("temp dtype = %s", temp.DType())
	}
	group := mustColumn(t, tbl, "Group")
	if group.DType() != String || group.Cardinality() != 2 {
		t.Fatalf("group = %s card %d", group.DType(), group.Cardinality())
	}
	cat := mustColumn(t, tbl, "Category")
	if got := strings.Join(cat.Levels(), ","); got != "alpha,beta,gamma" {
		t.Fatalf("category levels = %s", got)
	}
}

func mustColumn(t *testing.T, tbl *Table, name string) *Column {
	t.Helper()
	c, ok := tbl.Column(name)
	if !ok {
		t.Fatalf("column %q missing (have %v)", name, tbl.Names())
	}
	return c
}

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	raw := strings.ReplaceAll(strings.TrimSpace(xlsxFixtureBase64), "\n", "")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decode xlsx fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "analysis_dataset.xlsx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write xlsx fixture: %v", err)
	}
	return path
}

func TestReadXLSXSharedStringsAndGaps(t *testing.T) {
	parts := map[string]string{
		"xl/workbook.xml": `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets><sheet name="Sales" sheetId="1" r:id="rId7"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships><Relationship Id="rId7" Target="/xl/worksheets/data.xml"/></Relationships>`,
		"xl/sharedStrings.xml": `<sst><si><t>region</t></si><si><r><t>No</t></r><r><t>rth</t></r></si></sst>`,
		"xl/worksheets/data.xml": `<worksheet><sheetData>` +
			`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="C1" t="inlineStr"><is><t>units</t></is></c></row>` +
			`<row r="2"><c r="A2" t="s"><v>1</v></c><c r="C2"><v>12.5</v></c></row>` +
			`</sheetData></worksheet>`,
	}
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := readXLSX(path, "sales", 0)
	if err != nil {
		t.Fatalf("readXLSX: %v", err)
	}
	want := [][]string{{"region", "", "units"}, {"North", "", "12.5"}}
	if len(records) != len(want) {
		t.Fatalf("records = %q, want %q", records, want)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %q, want %q", i, records[i], want[i])
		}
	}

	if _, err := readXLSX(path, "", 3); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing sheet index err = %v, want ErrInvalidArgument", err)
	}
}

func TestColumnIndex(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA1": 26, "ab7": 27, "12": -1}
	for ref, want := range cases {
		if got := columnIndex(ref); got != want {
			t.Errorf("columnIndex(%q) = %d, want %d", ref, got, want)
		}
	}
}
