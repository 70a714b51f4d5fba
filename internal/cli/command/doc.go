// Package command provides CLI command definitions for bil.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, runtime wiring
//   - project.go: project subcommand group
//   - group.go: pay group subcommand group
//   - payment.go: payment subcommand group
//   - file.go: attachment upload
//   - config.go: configuration subcommand group
//   - system.go: version, metrics, ping and session context
//   - shell.go: interactive shell over one session
//
// Commands parse their arguments, call the session service and format the
// result. Context selection (active project and pay group) lives in the
// session service; --project and --group set it explicitly.
package command
