package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gonum.org/v1/plot/vg"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/edakit/pkg/plotting"
	"github.com/KaramelBytes/edakit/pkg/profile"
	"github.com/KaramelBytes/edakit/pkg/selection"
)

// Global configuration structure.
type Global struct {
	// Profiling thresholds
	CategoricalThreshold int     `mapstructure:"categorical_threshold" yaml:"categorical_threshold" validate:"gte=2"`
	ContinuousThreshold  float64 `mapstructure:"continuous_threshold" yaml:"continuous_threshold" validate:"gte=0,lte=1"`

	// Selection thresholds
	MinCorrelation float64 `mapstructure:"min_correlation" yaml:"min_correlation" validate:"gte=0,lte=1"`
	MaxPValue      float64 `mapstructure:"max_p_value" yaml:"max_p_value" validate:"gte=0,lte=1"`

	// Plotting
	PlotKind      string  `mapstructure:"plot_kind" yaml:"plot_kind" validate:"oneof=kde hist"`
	PlotBins      int     `mapstructure:"plot_bins" yaml:"plot_bins" validate:"gte=1"`
	PlotFormat    string  `mapstructure:"plot_format" yaml:"plot_format" validate:"oneof=png svg pdf"`
	PanelSizeInch float64 `mapstructure:"panel_size_inch" yaml:"panel_size_inch" validate:"gt=0"`

	// Loading
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown yaml json"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn error"`
	MetricsFile  string `mapstructure:"metrics_file" yaml:"metrics_file"`
}

var validate = validator.New()

// Validate checks every threshold and enum.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ProfileOptions returns the profiling thresholds.
func (c *Global) ProfileOptions() profile.Options {
	return profile.Options{CategoricalThreshold: c.CategoricalThreshold, ContinuousThreshold: c.ContinuousThreshold}
}

// NumericOptions returns the numeric selector thresholds.
func (c *Global) NumericOptions() selection.NumericOptions {
	return selection.NumericOptions{MinCorrelation: c.MinCorrelation, MaxPValue: c.MaxPValue, Profile: c.ProfileOptions()}
}

// CategoricalOptions returns the categorical selector threshold.
func (c *Global) CategoricalOptions() selection.CategoricalOptions {
	return selection.CategoricalOptions{MaxPValue: c.MaxPValue, Profile: c.ProfileOptions()}
}

// PlotOptions returns plotting defaults.
func (c *Global) PlotOptions() plotting.PlotOptions {
	o := plotting.DefaultOptions()
	o.Kind = plotting.Kind(c.PlotKind)
	o.Bins = c.PlotBins
	o.PanelWidth = vg.Length(c.PanelSizeInch) * vg.Inch
	o.PanelHeight = o.PanelWidth
	return o
}

// Dir returns ~/.edakit.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edakit"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edakit/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDAKIT")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func setDefaults(v *viper.Viper) {
	p := profile.DefaultOptions()
	n := selection.DefaultNumericOptions()
	v.SetDefault("categorical_threshold", p.CategoricalThreshold)
	v.SetDefault("continuous_threshold", p.ContinuousThreshold)
	v.SetDefault("min_correlation", n.MinCorrelation)
	v.SetDefault("max_p_value", n.MaxPValue)
	v.SetDefault("plot_kind", string(plotting.KDE))
	v.SetDefault("plot_bins", 20)
	v.SetDefault("plot_format", "png")
	v.SetDefault("panel_size_inch", 4.0)
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("output_format", "markdown")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_file", "")
}
