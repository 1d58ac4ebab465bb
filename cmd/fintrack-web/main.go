package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/arampall/finance-tracker/internal/client"
	"github.com/arampall/finance-tracker/internal/config"
	"github.com/arampall/finance-tracker/internal/filters"
	"github.com/arampall/finance-tracker/internal/logger"
	"github.com/arampall/finance-tracker/internal/page"
	"github.com/arampall/finance-tracker/internal/web"
)

func main() {
	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	log := logger.Get()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	api := client.NewTransactionClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
	holder := filters.NewHolder()
	holder.SetPaging(nil, cfg.ListLimit)
	ctrl := page.NewController(api, holder)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Mount(ctx); err != nil {
		log.Warnw("Initial load failed", "api", cfg.APIBaseURL, "error", err)
	}

	srv, err := web.NewServer(ctrl)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
