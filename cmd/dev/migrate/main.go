package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/notcis/apartment-app/pkg/config"
	"github.com/notcis/apartment-app/pkg/db"
	"github.com/notcis/apartment-app/pkg/logger"
)

func main() {
	var (
		down    = flag.Int("down", 0, "roll back this many migrations instead of applying pending ones")
		version = flag.Bool("version", false, "print the applied schema version and exit")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	lg, err := logger.New(cfg.Log.Level, cfg.Log.Format, "apartment-migrate")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// Migrations use DIRECT_URL when set; DSNs are never logged.
	switch {
	case *version:
		v, dirty, err := db.MigrationVersion(cfg.MigrationsPath, cfg)
		if err != nil {
			lg.Fatal("read schema version", zap.Error(err))
		}
		lg.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return
	case *down > 0:
		if err := db.MigrateDown(cfg.MigrationsPath, cfg, *down); err != nil {
			lg.Fatal("migrate down failed", zap.Int("steps", *down), zap.Error(err))
		}
		lg.Info("migrations rolled back", zap.Int("steps", *down))
		return
	}

	if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
		lg.Fatal("migrate failed", zap.String("path", cfg.MigrationsPath), zap.Error(err))
	}

	// The runtime pool (DATABASE_URL) must also open.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		lg.Fatal("runtime db open failed", zap.Error(err))
	}
	pool.Close()

	lg.Info("migrations applied", zap.String("path", cfg.MigrationsPath))
}
