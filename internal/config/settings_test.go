package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := NewSettingsLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", s.Defaults.Threshold)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.Equal(t, "console", s.Output.Format)
	assert.Equal(t, ":8080", s.Server.Address)
	assert.Equal(t, int64(1<<20), s.Server.MaxBodyBytes)

	def, err := s.InputDefaults(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, def.CurrentMonth)
	assert.True(t, def.Threshold.Equal(decimal.NewFromInt(5000)))
	assert.True(t, def.Insurance.IsZero())
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "defaults:\n" +
		"  threshold: 6000\n" +
		"  insurance: 1234.56\n" +
		"logging:\n" +
		"  level: debug\n" +
		"  format: json\n" +
		"server:\n" +
		"  address: \"127.0.0.1:9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewSettingsLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "json", s.Logging.Format)
	assert.Equal(t, "127.0.0.1:9090", s.Server.Address)

	def, err := s.InputDefaults(time.Now())
	require.NoError(t, err)
	assert.True(t, def.Threshold.Equal(decimal.NewFromInt(6000)))
	assert.True(t, def.Insurance.Equal(decimal.RequireFromString("1234.56")))
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	t.Setenv("IIT_LOGGING_LEVEL", "warn")
	t.Setenv("IIT_DEFAULTS_SPECIAL_DEDUCTION", "3000")

	s, err := NewSettingsLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", s.Logging.Level)

	def, err := s.InputDefaults(time.Now())
	require.NoError(t, err)
	assert.True(t, def.SpecialDeduction.Equal(decimal.NewFromInt(3000)))
}

func TestLoadSettings_FlagOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	loader := NewSettingsLoader()
	require.NoError(t, loader.BindFlag("logging.level", fs.Lookup("log-level")))
	assert.Error(t, loader.BindFlag("logging.format", fs.Lookup("missing")))

	s, err := loader.Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", s.Logging.Level)
}

func TestLoadSettings_InvalidDefaults(t *testing.T) {
	t.Setenv("IIT_DEFAULTS_THRESHOLD", "not-a-number")
	_, err := NewSettingsLoader().Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "defaults.threshold")

	t.Setenv("IIT_DEFAULTS_THRESHOLD", "-1")
	_, err = NewSettingsLoader().Load("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := NewSettingsLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading settings file")
}
