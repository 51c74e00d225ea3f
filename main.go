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

	"pos_sales/api"
	"pos_sales/internal/config"
	"pos_sales/internal/logging"
	"pos_sales/internal/metrics"
	"pos_sales/internal/query"
	"pos_sales/internal/sales"
	"pos_sales/internal/session"
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

	m := metrics.NewRegistry()
	transport := query.NewHTTPTransport(cfg.QueryEndpoint, cfg.QueryTimeout, logger, m)
	defer transport.Close()

	feed := session.NewFeed(cfg.FeedSize)
	controller := session.NewController(
		sales.NewCatalog(transport, logger),
		sales.NewRecorder(transport, logger, m),
		sales.NewReporter(transport, logger, m),
		session.Fanout{session.NewLogSink(logger), feed},
		logger,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	if err := controller.Start(startCtx); err != nil {
		logger.Warn("starting with an empty catalog", zap.Error(err))
	}
	cancel()

	r := gin.Default()
	api.InitRoutes(r, api.Deps{
		Controller:    controller,
		Feed:          feed,
		Metrics:       m,
		AdminPassword: cfg.AdminPassword,
		Categories:    cfg.Categories,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting pos server",
		zap.String("port", cfg.Port),
		zap.String("query_endpoint", cfg.QueryEndpoint))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}

	// let in-flight sales reach the query service before exiting
	controller.Wait()
	logger.Info("server stopped")
}
