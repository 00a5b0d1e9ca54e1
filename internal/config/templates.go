package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Template renders cfg as a config file that Load accepts.
func Template(cfg RunConfig) (string, error) {
	raw := fileConfig{
		Input:       cfg.Input,
		MaxBits:     cfg.Limits.MaxBits,
		MaxDepth:    cfg.Limits.MaxDepth,
		LogLevel:    cfg.LogLevel,
		MetricsFile: cfg.MetricsFile,
	}
	var buf bytes.Buffer
	buf.WriteString("# bitsctl configuration. Zero limits disable the check.\n")
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return buf.String(), nil
}

func WriteTemplate(path string, cfg RunConfig, overwrite bool) error {
	template, err := Template(cfg)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
