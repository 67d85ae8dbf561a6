package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/internal/logger"
	"github.com/tendant/simple-classroom/internal/server"
	"github.com/tendant/simple-classroom/pkg/classroom/config"
)

func main() {
	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := cfg.Open(ctx, zlog)
	if err != nil {
		zlog.Fatal("failed to open backends", zap.Error(err))
	}
	defer backends.Close()

	svc, err := cfg.BuildService(backends, zlog)
	if err != nil {
		zlog.Fatal("failed to build service", zap.Error(err))
	}

	handler, err := server.Routes(cfg, svc, zlog)
	if err != nil {
		zlog.Fatal("failed to build routes", zap.Error(err))
	}

	if err := server.Run(ctx, cfg, handler, zlog); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
