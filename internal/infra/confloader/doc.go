// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: defaults, YAML files, environment variables, maps
//   - Watch Support: change notification for config files via fsnotify
//   - Type Safety: weakly typed unmarshaling into typed structs
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (BIL_ prefix)
//  3. Configuration file
//  4. Default values
package confloader
