package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Sasmit28/CivicApp/internal/app"
	"github.com/Sasmit28/CivicApp/internal/config"
	"github.com/Sasmit28/CivicApp/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, zl); err != nil {
		zl.Fatal("app", zap.Error(err))
	}
}
