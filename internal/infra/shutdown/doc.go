// Package shutdown coordinates interrupt handling for the bil CLI.
//
// The first SIGINT or SIGTERM cancels the command context so in-flight
// requests abort. A second signal runs the registered cleanup hooks, such
// as saving shell history, and exits.
//
// Usage:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.WithSignals(context.Background())
//	defer stop()
package shutdown
