package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "envble", cfg.Name)
	assert.Equal(t, "goble", cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.AdvertiseInterval)
	assert.Equal(t, time.Second, cfg.SamplePeriod)
	assert.Equal(t, 10, cfg.NotifyEvery)
	assert.False(t, cfg.Indicate)
	assert.Equal(t, "/sys/class/leds/led0/brightness", cfg.LEDPath)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: kitchen-sensor
backend: mem
log_level: debug
sample_period: 2s
notify_every: 5
indicate: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "kitchen-sensor", cfg.Name)
	assert.Equal(t, "mem", cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.SamplePeriod)
	assert.Equal(t, 5, cfg.NotifyEvery)
	assert.True(t, cfg.Indicate)

	// Untouched fields keep their defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.AdvertiseInterval)
	assert.Equal(t, "/sys/class/leds/led0/brightness", cfg.LEDPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty name", func(c *Config) { c.Name = "" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"zero advertise interval", func(c *Config) { c.AdvertiseInterval = 0 }, false},
		{"negative sample period", func(c *Config) { c.SamplePeriod = -time.Second }, false},
		{"zero notify every", func(c *Config) { c.NotifyEvery = 0 }, false},
		{"empty led path", func(c *Config) { c.LEDPath = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected logrus.Level
	}{
		{"debug", "debug", logrus.DebugLevel},
		{"info", "info", logrus.InfoLevel},
		{"warn", "warn", logrus.WarnLevel},
		{"error", "error", logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.LogLevel = tt.logLevel

			logger := cfg.NewLogger()

			require.NotNil(t, logger)
			assert.Equal(t, tt.expected, logger.GetLevel())

			// Verify formatter is set correctly
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func BenchmarkDefault(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Default()
	}
}
