// Package config defines the CLI configuration structure.
package config

import "time"

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// API location modes.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// CLIConfig is the configuration for the bil CLI (~/.bil/cli.yaml).
type CLIConfig struct {
	// Server is the location the client runs against. The API base URL
	// is derived from it according to Mode.
	Server string `yaml:"server" koanf:"server"`
	Mode   string `yaml:"mode" koanf:"mode"` // production, development

	// DevPort is the API port in development mode.
	DevPort int `yaml:"dev_port" koanf:"dev_port"`

	Output string `yaml:"output" koanf:"output"` // table, json, yaml

	// Timeout bounds each command. Zero disables it.
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`

	// RateLimit caps outgoing requests per second. Zero disables it.
	RateLimit float64 `yaml:"rate_limit" koanf:"rate_limit"`

	LogLevel  string `yaml:"log_level" koanf:"log_level"`
	LogFormat string `yaml:"log_format" koanf:"log_format"`

	// HistoryFile stores shell history. Empty uses ~/.bil/history.
	HistoryFile string `yaml:"history_file" koanf:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:    "http://localhost:8000/",
		Mode:      ModeProduction,
		DevPort:   8000,
		Output:    OutputTable,
		Timeout:   30 * time.Second,
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// ToMap returns the configuration keyed by its file keys.
func (c *CLIConfig) ToMap() map[string]any {
	return map[string]any{
		"server":       c.Server,
		"mode":         c.Mode,
		"dev_port":     c.DevPort,
		"output":       c.Output,
		"timeout":      c.Timeout.String(),
		"rate_limit":   c.RateLimit,
		"log_level":    c.LogLevel,
		"log_format":   c.LogFormat,
		"history_file": c.HistoryFile,
	}
}
