// internal/config/config.go
//
// Process configuration read from the environment (and a `.env` file in
// development).
//
// Environment variables:
//   PORT            listen port (default 5175)
//   LOG_LEVEL       zerolog level (default info)
//   LOG_PRETTY      human-readable console logs
//   CLIENT_ORIGIN   allowed CORS origin
//   COUNTRIES_FILE  YAML dataset; empty uses the embedded one
//   DB_PATH         SQLite file for saves
//   DATABASE_URL    Postgres URL for saves (wins over DB_PATH)
//   JWT_SECRET      HMAC key for session tokens
//   COOKIE_NAME     session cookie name
//   SESSION_TTL     idle time before a live session is evicted
//   NODE_ENV        "production" enables Secure cookies

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty     bool          `env:"LOG_PRETTY" envDefault:"false"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	CountriesFile string        `env:"COUNTRIES_FILE"`
	DBPath        string        `env:"DB_PATH"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	CookieName    string        `env:"COOKIE_NAME" envDefault:"capitals_session"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Environment   string        `env:"NODE_ENV" envDefault:"development"`
}

// Production reports whether NODE_ENV is "production".
func (c Config) Production() bool { return c.Environment == "production" }

// Load reads an optional .env file, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment into a Config and validates it.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.Production() && (c.JWTSecret == "" || c.JWTSecret == devSecret) {
		return Config{}, errors.New("config: JWT_SECRET must be set in production")
	}
	return c, nil
}
