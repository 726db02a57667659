package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notcis/apartment-app/internal/audit"
	"github.com/notcis/apartment-app/internal/httpapi"
	"github.com/notcis/apartment-app/internal/metrics"
	"github.com/notcis/apartment-app/internal/reference"
	"github.com/notcis/apartment-app/internal/room"
	"github.com/notcis/apartment-app/internal/views"
	"github.com/notcis/apartment-app/pkg/config"
	"github.com/notcis/apartment-app/pkg/db"
	"github.com/notcis/apartment-app/pkg/logger"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "apartment-api")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		lg.Fatal("db open", zap.Error(err))
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			lg.Fatal("migrate", zap.Error(err))
		}
	}

	var (
		invalidator views.Invalidator = views.Nop{}
		viewCache   func(http.Handler) http.Handler
	)
	rdb, err := db.OpenRedis(ctx, cfg.Redis)
	switch {
	case err != nil:
		// Views are still served, just uncached.
		lg.Warn("redis unavailable; view cache disabled", zap.Error(err))
	case rdb != nil:
		defer func() { _ = rdb.Close() }()
		cache := views.NewRedisCache(rdb, views.CacheOptions{
			Prefix:   cfg.Redis.ViewPrefix,
			TTL:      cfg.Redis.ViewTTL,
			BasePath: "/v1",
		}, lg)
		invalidator = cache
		viewCache = cache.Middleware
	}

	rooms := room.NewService(
		room.NewRepository(conn),
		reference.NewRepository(conn),
		invalidator,
		room.Rules{FloorMin: cfg.Rooms.FloorMin, FloorMax: cfg.Rooms.FloorMax},
		lg,
		metrics.New(prometheus.DefaultRegisterer),
	)

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		Log:       lg,
		Rooms:     rooms,
		Events:    audit.NewRepository(conn),
		ViewCache: viewCache,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
}
