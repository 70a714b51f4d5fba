// Package config provides CLI configuration for bil.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: CLIConfig struct (~/.bil/cli.yaml)
//   - loader.go: Configuration loading, merging and saving
//
// Configuration includes:
//
//   - Server location and API mode
//   - Output format preferences
//   - Timeout and rate limit
//   - Logging and history file location
package config
