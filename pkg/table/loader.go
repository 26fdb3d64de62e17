package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads one file format into a Table.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt ReadOptions) (*Table, error)
}

var registry []Loader

// Register adds a loader to the registry. Later registrations do not override earlier ones.
func Register(l Loader) {
	registry = append(registry, l)
}

// LoadFile selects a loader by file name and reads the whole file into memory.
func LoadFile(path string, opt ReadOptions) (*Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnknownFormat)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}

type csvLoader struct{}

func (csvLoader) CanLoad(path string) bool {
	name := strings.ToLower(path)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(path string, opt ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".xlsx")
}

func (xlsxLoader) Load(path string, opt ReadOptions) (*Table, error) {
	records, err := readXLSX(path, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, err
	}
	return fromRecords(records, opt)
}
