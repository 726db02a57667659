package db

import (
	"testing"

	"github.com/notcis/apartment-app/pkg/config"
)

func TestConnStrings(t *testing.T) {
	cfg := config.Config{DB: config.DBConfig{Host: "db", Port: "5432", Name: "apartment", User: "u", Password: "p"}}

	want := "postgres://u:p@db:5432/apartment?sslmode=disable"
	if got := runtimeConnString(cfg); got != want {
		t.Fatalf("runtimeConnString = %q, want %q", got, want)
	}
	if got := migrationConnString(cfg); got != want {
		t.Fatalf("migrationConnString without overrides = %q, want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://pooler:6543/apartment?pgbouncer=true"
	cfg.DirectURL = "postgres://direct:5432/apartment"
	if got := runtimeConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("runtime should prefer DATABASE_URL, got %q", got)
	}
	if got := migrationConnString(cfg); got != cfg.DirectURL {
		t.Fatalf("migrations should prefer DIRECT_URL, got %q", got)
	}

	cfg.DirectURL = "  "
	if got := migrationConnString(cfg); got != cfg.DatabaseURL {
		t.Fatalf("blank DIRECT_URL should fall back to DATABASE_URL, got %q", got)
	}
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	if err := MigrateDown("file://migrations", config.Config{}, 0); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}
