// README: Config loader: .env file plus env defaults for HTTP, stores, auth, and maps.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		// Empty DSN runs the in-memory backends (dev mode, no persistence).
		DSN string
	}
	Redis struct {
		// Empty addr disables the polyline cache.
		Addr string
	}
	Auth struct {
		JWTSecret      string
		AppPassword    string
		GoogleClientID string
	}
	Maps struct {
		APIKey string
	}
	Trip struct {
		MaxGroupSize int
	}
}

func Load() (Config, error) {
	// Local dev keeps secrets in a .env next to the binary; in containers
	// plain environment variables win.
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("RS_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("RS_DB_DSN")
	cfg.Redis.Addr = os.Getenv("RS_REDIS_ADDR")
	cfg.Auth.JWTSecret = envOrDefault("JWT_SECRET", "dev-secret-change-in-production")
	cfg.Auth.AppPassword = envOrDefault("APP_PASSWORD", "routesync-dev")
	cfg.Auth.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.Maps.APIKey = os.Getenv("GOOGLE_ROUTES_API_KEY")
	cfg.Trip.MaxGroupSize = envOrDefaultInt("RS_MAX_GROUP_SIZE", 9)
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
