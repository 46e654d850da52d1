package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/ereceipt/internal/app/journal"
	"github.com/magabrotheeeer/ereceipt/internal/config"
	"github.com/magabrotheeeer/ereceipt/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting delivery journal", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := journal.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize delivery journal", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("delivery journal stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("delivery journal stopped gracefully")
}
