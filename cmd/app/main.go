package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/app"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/config"
	"github.com/NastyaGoryachaya/crypto-dashboard/pkg/logger"
	"github.com/shopspring/decimal"
)

func main() {
	// Цены в JSON-ответах — числами, а не строками.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	lg := logger.New(&cfg.Logger)

	// context + signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// build application
	application, err := app.NewApp(ctx, *cfg, lg)
	if err != nil {
		lg.Error("app init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// run application
	if err := application.Run(ctx); err != nil {
		lg.Error("application stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lg.Info("crypto-dashboard stopped")
}
