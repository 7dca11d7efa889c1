// Command lexreview serves the vocabulary review callback API on top of two
// long-running lt-proc analyzers.
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment; ANALYZER_PRIMARY_PATH and ANALYZER_GUESSER_PATH are required.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/lexreview/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		slog.Error("lexreview failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
