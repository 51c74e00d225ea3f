package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pos_sales/internal/bridge"
	"pos_sales/internal/config"
	"pos_sales/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	db, err := bridge.Open(cfg.BridgeDBPath)
	if err != nil {
		logger.Fatal("failed to open bridge database", zap.String("path", cfg.BridgeDBPath), zap.Error(err))
	}
	defer db.Close()

	r := gin.Default()
	bridge.NewHandler(bridge.NewExecutor(db, logger), cfg.BridgeResponseShape, logger).InitRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.BridgePort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("bridge shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting query bridge",
		zap.String("port", cfg.BridgePort),
		zap.String("db_path", cfg.BridgeDBPath),
		zap.String("shape", cfg.BridgeResponseShape))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("bridge server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("query bridge stopped")
}
