// Package output provides output formatting for the bil CLI.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface, factory and format parsing
//   - table.go: Table rendering with wide mode support
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//   - progress.go: Upload progress bar
//   - spinner.go: Animation while an upload is in flight
//
// Decimal amounts are rendered with their exact text form in every format.
package output
