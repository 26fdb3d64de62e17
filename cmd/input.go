package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/edakit/internal/utils"
	"github.com/KaramelBytes/edakit/pkg/table"
)

// Input flags shared by describe, select and plot.
var (
	inDelimiter  string
	inDecimal    string
	inThousands  string
	inMaxRows    int
	inSheetName  string
	inSheetIndex int
)

func addInputFlags(fs *pflag.FlagSet) {
	fs.StringVar(&inDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (inferred from extension if omitted)")
	fs.StringVar(&inDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (overrides config)")
	fs.StringVar(&inThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (overrides config)")
	fs.IntVar(&inMaxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
	fs.StringVar(&inSheetName, "sheet-name", "", "XLSX: sheet name to load")
	fs.IntVar(&inSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

// readOptions turns the input flags and config into table.ReadOptions.
func readOptions() (table.ReadOptions, error) {
	opt := table.ReadOptions{MaxRows: inMaxRows, SheetName: inSheetName, SheetIndex: inSheetIndex}
	switch inDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", inDelimiter)
	}
	dec, thou := inDecimal, inThousands
	if dec == "" && cfg != nil {
		dec = cfg.DecimalSeparator
	}
	if thou == "" && cfg != nil {
		thou = cfg.ThousandsSeparator
	}
	switch strings.ToLower(strings.TrimSpace(dec)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", dec)
	}
	switch strings.ToLower(thou) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thou)
	}
	return opt, nil
}

func loadTable(path string) (*table.Table, error) {
	if err := fileExists(path); err != nil {
		return nil, err
	}
	opt, err := readOptions()
	if err != nil {
		return nil, err
	}
	t, err := table.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Int("rows", t.Rows()).Int("columns", len(t.Names())).Msg("table loaded")
	return t, nil
}

// report is the envelope written for yaml and json output.
type report struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Source string `json:"source" yaml:"source"`
	Kind   string `json:"kind" yaml:"kind"`
	Result any    `json:"result" yaml:"result"`
}

// markdowner is implemented by every result type.
type markdowner interface {
	Markdown() string
}

// writeReport renders result in the selected format to --output or stdout.
func writeReport(cmd *cobra.Command, kind, source string, result markdowner) error {
	format := outFormat
	if format == "" && cfg != nil {
		format = cfg.OutputFormat
	}
	var (
		b   []byte
		err error
	)
	env := report{RunID: uuid.NewString(), Source: filepath.Base(source), Kind: kind, Result: result}
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		b = []byte(result.Markdown())
	case "yaml", "yml":
		b, err = utils.YAML(env)
	case "json":
		b, err = utils.PrettyJSON(env)
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|yaml|json)", format)
	}
	if err != nil {
		return err
	}
	if outputPath != "" {
		if err := utils.SafeWriteFile(outputPath, b); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s report to %s\n", kind, outputPath)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(b), "\n"))
	return err
}

// fileExists is used to fail fast with a clear message before loading.
func fileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	return nil
}
