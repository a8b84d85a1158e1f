package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the client configuration. Values come from defaults, then an
// optional YAML file, then CHESSROOM_* environment overrides. Intervals are
// milliseconds in the file; use the accessor methods for durations.
type Config struct {
	ServerURL string `yaml:"server_url"`
	DataDir   string `yaml:"data_dir"`
	LogLevel  string `yaml:"log_level"`

	Clock struct {
		TickIntervalMS   int `yaml:"tick_interval_ms"`
		ResyncIntervalMS int `yaml:"resync_interval_ms"`
	} `yaml:"clock"`

	Reconnect struct {
		MaxAttempts int `yaml:"max_attempts"`
		WaitMS      int `yaml:"wait_ms"`
	} `yaml:"reconnect"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		ServerURL: "ws://localhost:3000/ws",
		DataDir:   defaultDataDir(),
		LogLevel:  "info",
	}
	cfg.Clock.TickIntervalMS = 100
	cfg.Clock.ResyncIntervalMS = 10000
	cfg.Reconnect.MaxAttempts = 5
	cfg.Reconnect.WaitMS = 1000
	return cfg
}

// Load builds the configuration. path may be empty to skip the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ServerURL = getEnv("CHESSROOM_SERVER_URL", cfg.ServerURL)
	cfg.DataDir = getEnv("CHESSROOM_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("CHESSROOM_LOG_LEVEL", cfg.LogLevel)
	cfg.Reconnect.MaxAttempts = getEnvAsInt("CHESSROOM_RECONNECT_ATTEMPTS", cfg.Reconnect.MaxAttempts)

	return cfg, nil
}

// TickInterval is the local clock re-render cadence.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Clock.TickIntervalMS) * time.Millisecond
}

// ResyncInterval is the cadence of timer sync requests.
func (c *Config) ResyncInterval() time.Duration {
	return time.Duration(c.Clock.ResyncIntervalMS) * time.Millisecond
}

// ReconnectWait is the delay between reconnect attempts.
func (c *Config) ReconnectWait() time.Duration {
	return time.Duration(c.Reconnect.WaitMS) * time.Millisecond
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/chessroom"
	}
	return ".chessroom"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
