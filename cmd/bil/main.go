package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yndnr/bil-go/internal/cli/command"
	"github.com/yndnr/bil-go/internal/infra/shutdown"
)

func main() {
	h := shutdown.NewHandler(5 * time.Second)
	ctx, stop := h.WithSignals(context.Background())

	app := command.WithShutdown(command.App(), h)
	err := app.RunContext(ctx, os.Args)

	stop()
	if serr := h.Shutdown(); serr != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", serr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
