// Package config holds application configuration: the YAML config file
// format, its defaults, validation, and logger construction.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	// Name is the advertised device name.
	Name string `yaml:"name" default:"envble"`

	// Backend selects the radio stack implementation ("goble" or "mem").
	Backend string `yaml:"backend" default:"goble"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" default:"info"`

	// AdvertiseInterval is the advertising interval.
	AdvertiseInterval time.Duration `yaml:"advertise_interval" default:"500ms"`

	// SamplePeriod is how often the sensor is read and published.
	SamplePeriod time.Duration `yaml:"sample_period" default:"1s"`

	// NotifyEvery publishes with notifications on every Nth sample.
	NotifyEvery int `yaml:"notify_every" default:"10"`

	// Indicate requests acknowledged delivery on notifying samples.
	Indicate bool `yaml:"indicate" default:"false"`

	// LEDPath is the brightness attribute of the actuator LED.
	LEDPath string `yaml:"led_path" default:"/sys/class/leds/led0/brightness"`
}

// Default returns a Config populated from the struct tag defaults.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "envble", "config.yaml")
}

// Load reads and parses a YAML config file. Missing fields keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.AdvertiseInterval <= 0 {
		return fmt.Errorf("advertise_interval must be > 0")
	}
	if c.SamplePeriod <= 0 {
		return fmt.Errorf("sample_period must be > 0")
	}
	if c.NotifyEvery <= 0 {
		return fmt.Errorf("notify_every must be > 0")
	}
	if c.LEDPath == "" {
		return fmt.Errorf("led_path must not be empty")
	}
	return nil
}

// NewLogger creates a configured logger instance.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
