// Package config loads bridge settings from defaults, an optional YAML file
// and SIMU_BRIDGE_* environment variables, in that order of precedence.
// Command-line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SIMU_BRIDGE_"

// Config holds the bridge configuration.
type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	PortFile string `yaml:"port_file"`

	// ReadLimit caps the single read of a request; larger requests are truncated.
	ReadLimit   int           `yaml:"read_limit"`
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// HandoffTimeout bounds how long a connection waits for the automation context.
	HandoffTimeout time.Duration `yaml:"handoff_timeout"`
	// MaxWait clamps the timeout of /ui/wait. It must stay below HandoffTimeout.
	MaxWait      time.Duration `yaml:"max_wait"`
	PollInterval time.Duration `yaml:"poll_interval"`

	Tree TreeConfig `yaml:"tree"`
	Find FindConfig `yaml:"find"`
	Log  LogConfig  `yaml:"log"`

	// Fixture is the path of a YAML app hierarchy served instead of a live
	// automation backend.
	Fixture string `yaml:"fixture"`
}

type TreeConfig struct {
	MaxDepth int `yaml:"max_depth"`
	ChildCap int `yaml:"child_cap"`
}

type FindConfig struct {
	UpperBound int `yaml:"upper_bound"`
	ResultCap  int `yaml:"result_cap"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:           "127.0.0.1",
		Port:           0,
		PortFile:       filepath.Join(os.TempDir(), "simu-bridge-port"),
		ReadLimit:      64 * 1024,
		ReadTimeout:    10 * time.Second,
		HandoffTimeout: 30 * time.Second,
		MaxWait:        25 * time.Second,
		PollInterval:   250 * time.Millisecond,
		Tree:           TreeConfig{MaxDepth: 6, ChildCap: 30},
		Find:           FindConfig{UpperBound: 200, ResultCap: 20},
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("HOST", c.Host)
	c.PortFile = getEnv("PORT_FILE", c.PortFile)
	c.Fixture = getEnv("FIXTURE", c.Fixture)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &c.Port},
		{"READ_LIMIT", &c.ReadLimit},
		{"TREE_MAX_DEPTH", &c.Tree.MaxDepth},
		{"TREE_CHILD_CAP", &c.Tree.ChildCap},
		{"FIND_UPPER_BOUND", &c.Find.UpperBound},
		{"FIND_RESULT_CAP", &c.Find.ResultCap},
	}
	for _, v := range ints {
		n, err := getEnvAsInt(v.key, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"READ_TIMEOUT", &c.ReadTimeout},
		{"HANDOFF_TIMEOUT", &c.HandoffTimeout},
		{"MAX_WAIT", &c.MaxWait},
		{"POLL_INTERVAL", &c.PollInterval},
	}
	for _, v := range durations {
		d, err := getEnvAsDuration(v.key, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Host == "":
		return errors.New("host cannot be empty")
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("invalid port: %d", c.Port)
	case c.ReadLimit <= 0:
		return fmt.Errorf("read_limit must be positive, got %d", c.ReadLimit)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout)
	case c.HandoffTimeout <= 0:
		return fmt.Errorf("handoff_timeout must be positive, got %s", c.HandoffTimeout)
	case c.MaxWait <= 0 || c.MaxWait >= c.HandoffTimeout:
		return fmt.Errorf("max_wait must be positive and below handoff_timeout (%s), got %s", c.HandoffTimeout, c.MaxWait)
	case c.PollInterval <= 0:
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	case c.Tree.MaxDepth < 1:
		return fmt.Errorf("tree.max_depth must be at least 1, got %d", c.Tree.MaxDepth)
	case c.Tree.ChildCap < 1:
		return fmt.Errorf("tree.child_cap must be at least 1, got %d", c.Tree.ChildCap)
	case c.Find.ResultCap < 1:
		return fmt.Errorf("find.result_cap must be at least 1, got %d", c.Find.ResultCap)
	case c.Find.UpperBound < c.Find.ResultCap:
		return fmt.Errorf("find.upper_bound (%d) must not be below find.result_cap (%d)", c.Find.UpperBound, c.Find.ResultCap)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (use debug, info, warn, or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (use text or json)", c.Log.Format)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s%s: %q (expected integer)", EnvPrefix, key, value)
	}
	return n, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s%s: %q (expected duration, e.g., '30s', '250ms')", EnvPrefix, key, value)
	}
	return d, nil
}
