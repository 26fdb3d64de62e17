package cmd

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/edakit/internal/config"
)

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Value.Type() != "stringSlice" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	plotColumns = nil
	c, err := cfgpkg.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg = c
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// writeCustomers writes a 120-row dataset with CLV as the regression target.
func writeCustomers(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("CLV,Income,Tenure,Gender,State,Segment\n")
	states := []string{"CA", "NY", "TX", "WA", "OR"}
	for i := 0; i < 120; i++ {
		clv := fmt.Sprintf("%.2f", 1000+25*float64(i)+300*math.Sin(float64(i)))
		if i == 5 {
			clv = "NA"
		}
		seg := "A"
		if i >= 60 {
			seg = "B"
		}
		fmt.Fprintf(&b, "%s,%.2f,%d,%s,%s,%s\n", clv,
			20000+40*float64(i)+3000*math.Cos(float64(i)*1.7), i%12,
			[]string{"F", "M"}[i%2], states[i%5], seg)
	}
	path := filepath.Join(dir, "customers.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCLI_DescribeSelectPlot(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeCustomers(t, home)

	out := mustRun(t, "describe", data)
	if !strings.Contains(out, "[DATASET PROFILE]") || !strings.Contains(out, "→ binary") {
		t.Fatalf("describe markdown missing sections:\n%s", out)
	}

	report := filepath.Join(home, "reports", "profile.json")
	out = mustRun(t, "describe", data, "--format", "json", "-o", report)
	if !strings.Contains(out, "✓ Wrote profile report") {
		t.Fatalf("unexpected status line: %q", out)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{`"run_id"`, `"source": "customers.csv"`, `"suggested_type": "continuous"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("json report missing %s", want)
		}
	}

	out = mustRun(t, "describe", data, "--typing")
	if !strings.Contains(out, "- nominal: State") || !strings.Contains(out, "- discrete: Tenure") {
		t.Errorf("typing output:\n%s", out)
	}

	out = mustRun(t, "select", "num", data, "--target", "CLV")
	if !strings.Contains(out, "[NUMERIC FEATURE SELECTION]") || !strings.Contains(out, "- Income: r=") {
		t.Fatalf("select num output:\n%s", out)
	}

	out = mustRun(t, "select", "cat", data, "-t", "CLV", "--format", "yaml")
	for _, want := range []string{"kind: categorical_selection", "test: Mann-Whitney U", "test: ANOVA"} {
		if !strings.Contains(out, want) {
			t.Errorf("select cat yaml missing %q:\n%s", want, out)
		}
	}

	figDir := filepath.Join(home, "figs")
	metricsPath := filepath.Join(home, "edakit.prom")
	out = mustRun(t, "plot", "num", data, "--target", "CLV", "--out-dir", figDir, "--image-format", "svg", "--metrics-file", metricsPath)
	if !strings.Contains(out, "✓ Wrote figure") {
		t.Fatalf("plot num output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(figDir, "numeric-1.svg")); err != nil {
		t.Fatalf("figure not written: %v", err)
	}
	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(prom), "edakit_figures_rendered_total") {
		t.Errorf("metrics file missing figures counter:\n%s", prom)
	}

	mustRun(t, "plot", "cat", data, "--target", "CLV", "--out-dir", figDir, "--individual", "--kind", "hist")
	matches, _ := filepath.Glob(filepath.Join(figDir, "Segment-1.png"))
	if len(matches) != 1 {
		t.Errorf("expected Segment-1.png in %s", figDir)
	}
}

func TestCLI_Errors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	data := writeCustomers(t, home)

	cases := [][]string{
		{"select", "num", data, "--target", "Gender"},
		{"select", "num", data, "--target", "Missing"},
		{"select", "cat", data},
		{"describe", filepath.Join(home, "nope.csv")},
		{"describe", data, "--format", "xml"},
		{"describe", data, "--decimal", "semicolon"},
		{"select", "num", data, "--target", "CLV", "--min-corr", "1.5"},
	}
	for _, args := range cases {
		if _, err := runCmd(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	mustRun(t, "config", "set", "max_p_value", "0.01")
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "max_p_value: 0.010") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(home, ".edakit", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if _, err := runCmd(t, "config", "set", "max_p_value", "3"); err == nil {
		t.Fatal("expected validation error")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatal("expected unknown key error")
	}
}
