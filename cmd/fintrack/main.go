package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arampall/finance-tracker/internal/cli"
	"github.com/arampall/finance-tracker/internal/client"
	"github.com/arampall/finance-tracker/internal/config"
	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/page"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	logger.Init(cfg.Env, level)
	defer logger.Sync()

	api := client.NewTransactionClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	holder := filters.NewHolder()
	holder.SetPaging(nil, cfg.ListLimit)
	app := cli.NewApp(page.NewController(api, holder), api)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
