// Package config defines the CLI configuration structure.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/bil-go/internal/infra/confloader"
)

// EnvPrefix is the prefix of environment overrides (BIL_SERVER, BIL_OUTPUT, ...).
const EnvPrefix = "BIL_"

// DefaultConfigDir returns the directory holding CLI state.
func DefaultConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".bil")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "cli.yaml")
}

// DefaultHistoryPath returns the default shell history path.
func DefaultHistoryPath() string {
	return filepath.Join(DefaultConfigDir(), "history")
}

// Load loads CLI configuration: defaults, then the file at path (optional),
// then BIL_* environment variables.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := &CLIConfig{}
	l := confloader.NewLoader(
		confloader.WithEnvPrefix(EnvPrefix),
		confloader.WithConfigFile(path),
		confloader.WithOptionalFile(),
		confloader.WithDefaults(Default().ToMap()),
	)
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save saves CLI configuration to file with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cli-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}

	return os.Rename(tmp.Name(), path)
}

// Merge returns a copy of cfg with the flag overrides applied.
// Values may be strings; they are converted to the field types.
func Merge(cfg *CLIConfig, flags map[string]any) (*CLIConfig, error) {
	l := confloader.NewLoader(confloader.WithEnvPrefix(EnvPrefix))
	if err := l.LoadMap(cfg.ToMap()); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := l.LoadMap(flags); err != nil {
			return nil, err
		}
	}

	merged := &CLIConfig{}
	if err := l.Unmarshal(merged); err != nil {
		return nil, fmt.Errorf("merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Set returns a copy of cfg with key set to value.
func Set(cfg *CLIConfig, key, value string) (*CLIConfig, error) {
	if _, ok := cfg.ToMap()[key]; !ok {
		return nil, fmt.Errorf("unknown config key %q (valid keys: %v)", key, Keys())
	}
	return Merge(cfg, map[string]any{key: value})
}

// Keys returns the valid config keys in sorted order.
func Keys() []string {
	m := Default().ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks enumerated and numeric fields.
func (c *CLIConfig) Validate() error {
	switch c.Mode {
	case ModeProduction, ModeDevelopment:
	default:
		return fmt.Errorf("invalid mode %q (want %s or %s)", c.Mode, ModeProduction, ModeDevelopment)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output %q (want table, json or yaml)", c.Output)
	}
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	if c.DevPort < 0 || c.DevPort > 65535 {
		return fmt.Errorf("invalid dev_port %d", c.DevPort)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
