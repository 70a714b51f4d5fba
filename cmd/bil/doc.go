// Package main provides the entry point for bil.
//
// bil is the command-line client for the bill-splitting API. It works on
// projects, pay groups and payments through a single session:
//
//   - Project listing, details, history snapshots and renames
//   - Pay group and payment management inside the active project
//   - Attachment upload for payments
//   - Configuration and diagnostics
//
// Usage:
//
//	bil [global flags] [command] [flags]
//	bil --server https://bills.example.com/app/ project list
//	bil -o json project get 1
//	bil shell
//
// The shell keeps the active project and pay group between commands.
package main
