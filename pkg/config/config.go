package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB    DBConfig
	Redis RedisConfig
	Log   LogConfig
	Rooms RoomConfig

	// AdminAllowedOrigins is the CORS allowlist for the admin frontend. Example:
	//   https://admin.example.com,http://localhost:3000
	AdminAllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string

	// Pool tuning; zero keeps the pgxpool defaults.
	MaxConns       int
	ConnectTimeout time.Duration
}

// RedisConfig configures the rendered-view cache. An empty Addr disables it.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	ViewTTL    time.Duration
	ViewPrefix string
}

type LogConfig struct {
	Level  string
	Format string
}

// RoomConfig holds the domain bounds applied by room validation.
type RoomConfig struct {
	FloorMin int
	FloorMax int
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	appEnv := env("APP_ENV", "dev")
	logFormat := "console"
	if appEnv == "prod" {
		logFormat = "json"
	}

	return Config{
		AppEnv:         appEnv,
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "apartment"),
			User:     env("DB_USER", "apartment"),
			Password: env("DB_PASSWORD", "apartment"),
			SSLMode:  env("DB_SSLMODE", "disable"),

			MaxConns:       envInt("DB_MAX_CONNS", 0),
			ConnectTimeout: envDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         envInt("REDIS_DB", 0),
			ViewTTL:    envDuration("VIEW_CACHE_TTL", 5*time.Minute),
			ViewPrefix: env("VIEW_CACHE_PREFIX", "apartment:view"),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", logFormat),
		},
		Rooms: RoomConfig{
			FloorMin: envInt("ROOM_FLOOR_MIN", -10),
			FloorMax: envInt("ROOM_FLOOR_MAX", 200),
		},
		AdminAllowedOrigins: envList("ADMIN_ALLOWED_ORIGINS", "http://localhost:3000"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
