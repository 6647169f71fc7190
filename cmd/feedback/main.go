// Command feedback prints random UI design prompts once the user has
// unlocked it with an email address.
//
//	feedback unlock you@example.com
//	feedback generate --copy
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sakif/ui-feedback/internal/client/cli"
	"github.com/sakif/ui-feedback/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewApp(cfg, logger)
	defer app.Close()

	if err := app.Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
