package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/configs"
	"github.com/konnn04/food-app-server/middlewares"
	"github.com/konnn04/food-app-server/pkg/idempotency"
	"github.com/konnn04/food-app-server/routes"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := configs.LoadConfig()

	logger, err := configs.NewLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *configs.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := configs.ConnectionDB(cfg.DBSource)
	if err != nil {
		return err
	}
	if err := configs.SetupDatabase(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := configs.SeedLookups(db); err != nil {
		return fmt.Errorf("seed lookups: %w", err)
	}
	if cfg.SeedDemo {
		if err := configs.SeedDemo(db); err != nil {
			return fmt.Errorf("seed demo: %w", err)
		}
	}

	// Idempotency keys: Redis when configured, in-process otherwise
	var store idempotency.Store = idempotency.NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := idempotency.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rs.Close()
		store = rs
	}

	app := routes.NewApp(db, cfg, logger, store)
	go app.Hub.Run(ctx)
	go app.Sweeper.Run(ctx)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middlewares.RequestLogger(logger), middlewares.Recovery(logger))
	routes.RegisterRoutes(r, app)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           otelhttp.NewHandler(r, "food-app-server"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
