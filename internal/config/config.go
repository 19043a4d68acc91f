// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Database settings are optional: when
// DB_HOST is unset the server falls back to the in-memory store, which
// is intended for local development and tests.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address, empty selects the in-memory store
	DBPort string // database port number
	DBName string // database name

	TokenSizeBytes   int           // entropy of generated session tokens
	TokenTTL         time.Duration // absolute token lifetime
	TokenRollingTTL  time.Duration // idle window renewed on every use
	MaxTokensPerUser int           // per-user session quota
	BcryptCost       int           // bcrypt cost for password hashing

	KeepAliveInterval time.Duration // event stream keep-alive period

	BrokerURL string // RabbitMQ URL, empty disables the queue
}

// Load reads configuration from the environment, falling back to a
// local .env file when present. Database variables are enforced by
// must() only when DB_HOST is set; everything else has a default.
func Load() Config {
	_ = godotenv.Load() // .env is optional; real deployments set variables directly

	cfg := Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: envStr("APP_PORT", "8080"),

		DBHost: os.Getenv("DB_HOST"),

		TokenSizeBytes:   envInt("TOKEN_SIZE_BYTES", 32),
		TokenTTL:         envDur("TOKEN_TTL", 24*time.Hour),
		TokenRollingTTL:  envDur("TOKEN_ROLLING_TTL", time.Hour),
		MaxTokensPerUser: envInt("MAX_TOKENS_PER_USER", 3),
		BcryptCost:       envInt("BCRYPT_COST", 10),

		KeepAliveInterval: envDur("KEEP_ALIVE_INTERVAL", 2*time.Second),

		BrokerURL: os.Getenv("RABBITMQ_URL"),
	}
	if cfg.DBHost != "" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// UseDatabase reports whether MySQL is configured; otherwise the
// server runs against the in-memory store.
func (c Config) UseDatabase() bool { return c.DBHost != "" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
