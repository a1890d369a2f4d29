// Package config loads wercrash.yaml, the optional settings file that sits
// next to the application's executable.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the install directory.
const FileName = "wercrash.yaml"

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Client   ClientConfig   `yaml:"client"`
	Notify   NotifyConfig   `yaml:"notify"`
	Minidump MinidumpConfig `yaml:"minidump"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output is empty (discard), "stderr", or a file path. Relative paths
	// are resolved against the crash reports directory.
	Output string `yaml:"output"`
	// MaxSize truncates the log file when it has grown past this size.
	MaxSize ByteSize `yaml:"max_size"`
}

// ClientConfig describes the reporting client launched for main-process
// crashes.
type ClientConfig struct {
	Executable string `yaml:"executable"`
	Disabled   bool   `yaml:"disabled"`
}

type NotifyConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type MinidumpConfig struct {
	PrereleaseChannels []string `yaml:"prerelease_channels"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		applyEnvOverrides(cfg)
		if err := validateConfig(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

// LoadFromBytes loads configuration from bytes without applying environment
// overrides. This is intended for testing where env vars should not interfere.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.MaxSize == 0 {
		cfg.Logging.MaxSize = 10 << 20
	}
	if cfg.Client.Executable == "" {
		cfg.Client.Executable = "crashreporter.exe"
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 5 * time.Second
	}
	if cfg.Minidump.PrereleaseChannels == nil {
		cfg.Minidump.PrereleaseChannels = []string{"nightly", "default"}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WERCRASH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WERCRASH_LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q", cfg.Logging.Format)
	}
	if cfg.Logging.MaxSize < 0 {
		return fmt.Errorf("logging.max_size must be >= 0")
	}
	if cfg.Notify.Timeout < 0 {
		return fmt.Errorf("notify.timeout must be >= 0")
	}
	// The notification wait is a single WaitForSingleObject call in
	// milliseconds and must stay below INFINITE.
	if cfg.Notify.Timeout >= time.Duration(0xFFFFFFFF)*time.Millisecond {
		return fmt.Errorf("notify.timeout %s is too long", cfg.Notify.Timeout)
	}
	if cfg.Client.Executable != "" && cfg.Client.Executable != baseName(cfg.Client.Executable) {
		return fmt.Errorf("client.executable must be a file name in the install directory, got %q", cfg.Client.Executable)
	}
	return nil
}

// baseName accepts both separator kinds regardless of GOOS.
func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}
