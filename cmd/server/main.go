package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/arthamatics/arthamatics-be/internal/config"
	"github.com/arthamatics/arthamatics-be/internal/migrate"
	"github.com/arthamatics/arthamatics-be/internal/server"
	"github.com/arthamatics/arthamatics-be/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	store := postgres.NewStore(pool)
	defer store.Close()

	srv := server.New(cfg, store, logger)

	go func() {
		logger.Info("arthamatics backend listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
