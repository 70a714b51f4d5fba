// Package repl provides the interactive shell of the bil CLI.
//
// The shell reads one line at a time, splits it into arguments and hands
// them to an Executor. The executor runs the line against a session that
// lives for the whole shell, so the active project and pay group selected
// by one line are visible to the next.
//
//   - repl.go: read loop, built-in commands, argument splitting
//   - completer.go: command tree and prefix suggestions
//   - history.go: command history persistence
package repl
