// Package config loads application configuration from environment
// variables.  A .env file, when present, is read by main before Load.
package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	glog "github.com/labstack/gommon/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env       string // APP_ENV (dev, test, prod)
	Port      string // APP_PORT
	LogLevel  glog.Lvl
	DBUser    string
	DBPass    string // optional
	DBHost    string
	DBPort    string
	DBName    string
	JWTSecret string

	InventoryBaseURL string        // base URL of the inventory service
	InventoryTimeout time.Duration // bound on every inventory call

	WarmupEnabled bool
	WarmupDelay   time.Duration
	WarmupRows    int // probe rectangle for events without a seat grid
	WarmupCols    int

	SessionBackend  string // "redis" or "memory"
	SessionTTL      time.Duration
	SessionPrefix   string
	MaxSeatsPerSale int

	AMQPURL         string // empty disables sale notifications
	AMQPDialTimeout time.Duration
}

// Load reads the configuration and exits the process when a required
// variable is missing or malformed.
func Load() Config {
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Parse builds a Config from lookup, which has the signature of
// os.LookupEnv.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	e := env{lookup: lookup}
	cfg := Config{
		Env:       e.must("APP_ENV"),
		Port:      e.must("APP_PORT"),
		LogLevel:  e.level("LOG_LEVEL", glog.INFO),
		DBUser:    e.must("DB_USER"),
		DBPass:    e.str("DB_PASS", ""),
		DBHost:    e.must("DB_HOST"),
		DBPort:    e.must("DB_PORT"),
		DBName:    e.must("DB_NAME"),
		JWTSecret: e.must("JWT_SECRET"),

		InventoryBaseURL: strings.TrimRight(e.str("INVENTORY_BASE_URL", "http://localhost:8081"), "/"),
		InventoryTimeout: e.duration("INVENTORY_TIMEOUT", 10*time.Second),

		WarmupEnabled: e.boolean("WARMUP_ENABLED", true),
		WarmupDelay:   e.duration("WARMUP_DELAY", 5*time.Second),
		WarmupRows:    e.integer("WARMUP_DEFAULT_ROWS", 50),
		WarmupCols:    e.integer("WARMUP_DEFAULT_COLS", 50),

		SessionBackend:  strings.ToLower(e.str("SESSION_BACKEND", "redis")),
		SessionTTL:      e.duration("SESSION_TTL", 30*time.Minute),
		SessionPrefix:   e.str("SESSION_PREFIX", "session"),
		MaxSeatsPerSale: e.integer("MAX_SEATS_PER_SALE", 4),

		AMQPURL:         e.str("RABBITMQ_URL", e.str("AMQP_URL", "")),
		AMQPDialTimeout: e.duration("AMQP_DIAL_TIMEOUT", 3*time.Second),
	}
	if cfg.SessionBackend != "redis" && cfg.SessionBackend != "memory" {
		e.fail("SESSION_BACKEND must be redis or memory, got %q", cfg.SessionBackend)
	}
	if cfg.InventoryTimeout <= 0 {
		e.fail("INVENTORY_TIMEOUT must be positive")
	}
	if cfg.MaxSeatsPerSale < 1 {
		e.fail("MAX_SEATS_PER_SALE must be at least 1")
	}
	if len(e.errs) > 0 {
		return Config{}, fmt.Errorf("%s", strings.Join(e.errs, "; "))
	}
	return cfg, nil
}

// env reads typed values and collects every problem instead of stopping
// at the first one.
type env struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (e *env) fail(format string, args ...any) {
	e.errs = append(e.errs, fmt.Sprintf(format, args...))
}

func (e *env) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// must retrieves a required variable.
func (e *env) must(key string) string {
	v, ok := e.get(key)
	if !ok {
		e.fail("missing required env var: %s", key)
	}
	return v
}

func (e *env) str(key, def string) string {
	if v, ok := e.get(key); ok {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	n, err := atoiStrict(v)
	if err != nil {
		e.fail("invalid int for %s: %q", key, v)
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail("invalid duration for %s: %q", key, v)
		return def
	}
	return d
}

func (e *env) boolean(key string, def bool) bool {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	b, known := parseBool(v)
	if !known {
		e.fail("invalid bool for %s: %q", key, v)
		return def
	}
	return b
}

func (e *env) level(key string, def glog.Lvl) glog.Lvl {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	switch strings.ToUpper(v) {
	case "DEBUG":
		return glog.DEBUG
	case "INFO":
		return glog.INFO
	case "WARN", "WARNING":
		return glog.WARN
	case "ERROR":
		return glog.ERROR
	case "OFF":
		return glog.OFF
	}
	e.fail("invalid log level for %s: %q", key, v)
	return def
}
