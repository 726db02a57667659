package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/notcis/apartment-app/pkg/config"
)

// MigrateConfig applies all pending up migrations from migrationsPath
// (e.g. file://migrations). Already-current schemas are not an error.
func MigrateConfig(migrationsPath string, cfg config.Config) error {
	return withMigrator(migrationsPath, cfg, func(m *migrate.Migrate) error {
		return ignoreNoChange(m.Up())
	})
}

// MigrateDown rolls back the last steps migrations.
func MigrateDown(migrationsPath string, cfg config.Config, steps int) error {
	if steps <= 0 {
		return errors.New("steps must be positive")
	}
	return withMigrator(migrationsPath, cfg, func(m *migrate.Migrate) error {
		return ignoreNoChange(m.Steps(-steps))
	})
}

// MigrationVersion reports the applied schema version. A fresh database
// reports version 0.
func MigrationVersion(migrationsPath string, cfg config.Config) (version uint, dirty bool, err error) {
	err = withMigrator(migrationsPath, cfg, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		return verr
	})
	return version, dirty, err
}

func withMigrator(migrationsPath string, cfg config.Config, fn func(m *migrate.Migrate) error) error {
	m, err := migrate.New(migrationsPath, migrationConnString(cfg))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return fn(m)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
