package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpgo/withholding-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. IIT_LOGGING_LEVEL.
const EnvPrefix = "IIT"

// Settings holds runtime configuration for the CLI and server.
type Settings struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
}

// DefaultsConfig holds the monthly amounts applied when inputs omit them.
// Amounts are strings so they keep full decimal precision.
type DefaultsConfig struct {
	Threshold        string `mapstructure:"threshold"`
	Insurance        string `mapstructure:"insurance"`
	SpecialDeduction string `mapstructure:"special_deduction"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputFile string `mapstructure:"output_file"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// ServerConfig holds HTTP server options
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

// SettingsLoader wraps a private viper instance so flags can be bound
// before the file is read.
type SettingsLoader struct {
	v *viper.Viper
}

// NewSettingsLoader returns a loader with defaults and env overrides registered.
func NewSettingsLoader() *SettingsLoader {
	v := viper.New()
	v.SetDefault("defaults.threshold", "5000")
	v.SetDefault("defaults.insurance", "0")
	v.SetDefault("defaults.special_deduction", "0")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_file", "")
	v.SetDefault("output.format", "console")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.max_body_bytes", int64(1<<20))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &SettingsLoader{v: v}
}

// BindFlag makes a command-line flag override the given settings key when set.
func (sl *SettingsLoader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return sl.v.BindPFlag(key, flag)
}

// Load reads the optional settings file and decodes everything into Settings.
func (sl *SettingsLoader) Load(path string) (*Settings, error) {
	if path != "" {
		sl.v.SetConfigFile(path)
		sl.v.SetConfigType("yaml")
		if err := sl.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
		}
	}

	var s Settings
	if err := sl.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	if _, err := s.InputDefaults(time.Time{}); err != nil {
		return nil, err
	}
	return &s, nil
}

// InputDefaults converts the configured amounts to Defaults, using the
// calendar month of now as the default current month.
func (s *Settings) InputDefaults(now time.Time) (Defaults, error) {
	parse := func(key, value string) (decimal.Decimal, error) {
		if strings.TrimSpace(value) == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return decimal.Zero, fmt.Errorf("defaults.%s: %w", key, err)
		}
		if d.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: defaults.%s cannot be negative", ErrInvalidInput, key)
		}
		return d, nil
	}

	threshold, err := parse("threshold", s.Defaults.Threshold)
	if err != nil {
		return Defaults{}, err
	}
	insurance, err := parse("insurance", s.Defaults.Insurance)
	if err != nil {
		return Defaults{}, err
	}
	special, err := parse("special_deduction", s.Defaults.SpecialDeduction)
	if err != nil {
		return Defaults{}, err
	}

	return Defaults{
		CurrentMonth:     dateutil.CurrentMonth(now),
		Threshold:        threshold,
		Insurance:        insurance,
		SpecialDeduction: special,
	}, nil
}
