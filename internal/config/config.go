// Package config loads the tour configuration from YAML files with
// ${VAR} and ${VAR:-default} environment expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the indexing-policy tour configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Tour     TourConfig     `yaml:"tour"`
	Emulator EmulatorConfig `yaml:"emulator"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServiceConfig holds the connection settings for the document service.
type ServiceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	MasterKey string `yaml:"master_key"`
	// UseEmulator runs an in-process emulator instead of calling a remote
	// endpoint; endpoint and master_key are then ignored.
	UseEmulator bool `yaml:"use_emulator"`
}

// TourConfig holds the workflow settings.
type TourConfig struct {
	Database      string `yaml:"database"`
	Container     string `yaml:"container"`
	DatasetURL    string `yaml:"dataset_url"`
	DocumentCount int    `yaml:"document_count"`
	ProgressEvery int    `yaml:"progress_every"`
	// PollIntervalSec is the fixed sleep between index transformation
	// progress polls.
	PollIntervalSec int `yaml:"poll_interval_sec"`
	// KeepResources skips the teardown stage.
	KeepResources bool `yaml:"keep_resources"`
}

// EmulatorConfig tunes the in-process emulator.
type EmulatorConfig struct {
	// ReindexDurationSec is how long a simulated index transformation takes
	// after an indexing policy replace. 0 completes instantly.
	ReindexDurationSec int `yaml:"reindex_duration_sec"`
}

// MetricsConfig holds the prometheus listener settings.
type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the /metrics listener
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Tour.Database == "" {
		c.Tour.Database = "indexing-tour"
	}
	if c.Tour.Container == "" {
		c.Tour.Container = "samples"
	}
	if c.Tour.DocumentCount <= 0 {
		c.Tour.DocumentCount = 10000
	}
	if c.Tour.ProgressEvery <= 0 {
		c.Tour.ProgressEvery = 1000
	}
	if c.Tour.PollIntervalSec <= 0 {
		c.Tour.PollIntervalSec = 5
	}
	if c.Emulator.ReindexDurationSec < 0 {
		c.Emulator.ReindexDurationSec = 0
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if !c.Service.UseEmulator {
		if c.Service.Endpoint == "" {
			return fmt.Errorf("service.endpoint is required unless service.use_emulator is set")
		}
		if c.Service.MasterKey == "" {
			return fmt.Errorf("service.master_key is required unless service.use_emulator is set")
		}
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
