// Package logger provides structured logging for bil.
//
//   - logger.go: slog-backed Logger, level control, default logger
//   - context.go: Context-aware logging with request IDs
//   - redact.go: Credential redaction
//
// The CLI logs to stderr so that command output on stdout stays
// machine-readable.
package logger
