package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"linkedin-job-tracker/internal/app"
	"linkedin-job-tracker/internal/config"
	"linkedin-job-tracker/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting LinkedIn job bot",
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage", cfg.StorageBackend),
		zap.Duration("check_interval", cfg.CheckInterval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	log.Info("bot is running...")
	log.Info("press Ctrl+C to stop")

	if err := a.RunBot(ctx); err != nil {
		log.Error("bot stopped with error", zap.Error(err))
	}

	log.Info("bot stopped")
}
