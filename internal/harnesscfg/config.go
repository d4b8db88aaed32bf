package harnesscfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Docker     DockerConfig     `yaml:"docker"`
	Properties PropertiesConfig `yaml:"properties"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// stdout, stderr or a file path
	Output string `yaml:"output"`
}

type DockerConfig struct {
	ProbeTimeoutMs     int `yaml:"probe_timeout_ms"`
	TerminateTimeoutMs int `yaml:"terminate_timeout_ms"`
	StartupTimeoutMs   int `yaml:"startup_timeout_ms"`
}

type PropertiesConfig struct {
	// Mirror published properties into the process environment.
	ExportEnv bool `yaml:"export_env"`
	// Dotenv file written by `harness up`.
	EnvFile string `yaml:"env_file"`
}

// Default returns a config with every default applied and env overrides honored.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg
}

// Load reads a YAML config. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
	if c.Docker.ProbeTimeoutMs <= 0 {
		c.Docker.ProbeTimeoutMs = 5000
	}
	if c.Docker.TerminateTimeoutMs <= 0 {
		c.Docker.TerminateTimeoutMs = 30000
	}
	if c.Docker.StartupTimeoutMs <= 0 {
		c.Docker.StartupTimeoutMs = 120000
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HARNESS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HARNESS_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("HARNESS_EXPORT_ENV"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			c.Properties.ExportEnv = b
		}
	}
	if v := os.Getenv("HARNESS_ENV_FILE"); v != "" {
		c.Properties.EnvFile = v
	}
	if v := os.Getenv("HARNESS_TERMINATE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && ms > 0 {
			c.Docker.TerminateTimeoutMs = ms
		}
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("log=%s/%s terminate_timeout_ms=%d", c.Logging.Level, c.Logging.Format, c.Docker.TerminateTimeoutMs)
}
