// Package config loads the espwifi host tool configuration: defaults, then
// a YAML file, then ESPWIFI_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sago35/drivers/esp8266"
)

// DefaultFile is read when no file is named and it exists.
const DefaultFile = "espwifi.yaml"

// Config represents the complete configuration for espwifi
type Config struct {
	Serial SerialConfig `yaml:"serial"`
	WiFi   WiFiConfig   `yaml:"wifi"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Timing TimingConfig `yaml:"timing"`
	Log    LogConfig    `yaml:"log"`
}

// SerialConfig holds the port the module is attached to
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// WiFiConfig holds the access point credentials
type WiFiConfig struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

// FetchConfig names the page to retrieve
type FetchConfig struct {
	Host        string `yaml:"host"`
	Page        string `yaml:"page"`
	IntervalSec int    `yaml:"intervalSec"`
}

// TimingConfig holds the driver wait windows in milliseconds
type TimingConfig struct {
	CommandMs       int `yaml:"commandMs"`
	ConnectMs       int `yaml:"connectMs"`
	JoinMs          int `yaml:"joinMs"`
	FetchMs         int `yaml:"fetchMs"`
	SettleMs        int `yaml:"settleMs"`
	ResetPulseMs    int `yaml:"resetPulseMs"`
	ResetRecoveryMs int `yaml:"resetRecoveryMs"`
}

// LogConfig holds log file rotation settings
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Debug      bool   `yaml:"debug"`
}

// Load loads configuration from file and environment variables. An empty
// path reads DefaultFile if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyUSB0",
			Baud: 115200,
		},
		Fetch: FetchConfig{
			Host:        "rss.theweathernetwork.com",
			Page:        "/weather/caqc0363",
			IntervalSec: 600,
		},
		Timing: TimingConfig{
			CommandMs:       300,
			ConnectMs:       2000,
			JoinMs:          5000,
			FetchMs:         5000,
			SettleMs:        300,
			ResetPulseMs:    1000,
			ResetRecoveryMs: 3000,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies environment variable overrides
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ESPWIFI_PORT"); v != "" {
		cfg.Serial.Port = v
	}
	if v := os.Getenv("ESPWIFI_BAUD"); v != "" {
		if baud, err := strconv.Atoi(v); err == nil {
			cfg.Serial.Baud = baud
		}
	}
	if v := os.Getenv("ESPWIFI_SSID"); v != "" {
		cfg.WiFi.SSID = v
	}
	if v := os.Getenv("ESPWIFI_PASSWORD"); v != "" {
		cfg.WiFi.Password = v
	}
	if v := os.Getenv("ESPWIFI_HOST"); v != "" {
		cfg.Fetch.Host = v
	}
	if v := os.Getenv("ESPWIFI_PAGE"); v != "" {
		cfg.Fetch.Page = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Serial.Port == "" {
		return errors.New("serial port must be set")
	}
	if c.Serial.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Serial.Baud)
	}
	if c.Fetch.Host == "" {
		return errors.New("fetch host must be set")
	}
	if len(c.Fetch.Page) == 0 || c.Fetch.Page[0] != '/' {
		return fmt.Errorf("fetch page %q must start with /", c.Fetch.Page)
	}
	if c.Fetch.IntervalSec <= 0 || c.Fetch.IntervalSec > 1800 {
		return fmt.Errorf("fetch interval %d seconds is outside reasonable range [1, 1800]", c.Fetch.IntervalSec)
	}

	windows := []struct {
		name string
		ms   int
	}{
		{"command", c.Timing.CommandMs},
		{"connect", c.Timing.ConnectMs},
		{"join", c.Timing.JoinMs},
		{"fetch", c.Timing.FetchMs},
		{"settle", c.Timing.SettleMs},
		{"resetPulse", c.Timing.ResetPulseMs},
		{"resetRecovery", c.Timing.ResetRecoveryMs},
	}
	for _, w := range windows {
		if w.ms < 0 || w.ms > 60000 {
			return fmt.Errorf("%s wait %dms is outside reasonable range [0, 60000]", w.name, w.ms)
		}
	}
	return nil
}

// Driver returns the driver configuration for the timing section. Zero
// windows fall back to the driver defaults.
func (t TimingConfig) Driver() *esp8266.Config {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return &esp8266.Config{
		CommandWait:   ms(t.CommandMs),
		ConnectWait:   ms(t.ConnectMs),
		JoinWait:      ms(t.JoinMs),
		FetchWait:     ms(t.FetchMs),
		SettleDelay:   ms(t.SettleMs),
		ResetPulse:    ms(t.ResetPulseMs),
		ResetRecovery: ms(t.ResetRecoveryMs),
	}
}
