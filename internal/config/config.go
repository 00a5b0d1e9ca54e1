// Package config loads bitsctl TOML configuration on top of defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
)

type fileConfig struct {
	Input       string `toml:"input"`
	MaxBits     int    `toml:"max_bits"`
	MaxDepth    int    `toml:"max_depth"`
	LogLevel    string `toml:"log_level"`
	MetricsFile string `toml:"metrics_file"`
}

// RunConfig is the resolved configuration for one bitsctl invocation.
// An empty LogLevel keeps whatever level internal/logging resolved from
// the environment.
type RunConfig struct {
	Input       string
	Limits      packet.Limits
	LogLevel    string
	MetricsFile string
}

func Default() RunConfig {
	return RunConfig{
		Limits: packet.DefaultLimits(),
	}
}

// Load reads path and applies every key it defines over Default.
// Relative file paths are taken relative to the config file.
func Load(path string) (RunConfig, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return RunConfig{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("input") {
		cfg.Input = relativeTo(path, strings.TrimSpace(raw.Input))
	}
	if meta.IsDefined("max_bits") {
		cfg.Limits.MaxBits = raw.MaxBits
	}
	if meta.IsDefined("max_depth") {
		cfg.Limits.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = relativeTo(path, strings.TrimSpace(raw.MetricsFile))
	}

	if err := Validate(cfg); err != nil {
		return RunConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func relativeTo(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

func Validate(cfg RunConfig) error {
	if cfg.Limits.MaxBits < 0 {
		return errors.New("max_bits must not be negative")
	}
	if cfg.Limits.MaxDepth < 0 {
		return errors.New("max_depth must not be negative")
	}
	if cfg.LogLevel == "" {
		return nil
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	return nil
}
