// Package config builds service configuration from the environment so
// main stays lean. Every knob has a development-safe default.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the service.
type Config struct {
	Addr string

	// PostgresDSN selects the Postgres-backed stores when set; the
	// service falls back to seeded in-memory stores otherwise.
	PostgresDSN string

	// Redis backs the resolver cache. Empty disables caching.
	Redis RedisConfig

	// KafkaBrokers enables the compliance audit publisher when set.
	KafkaBrokers []string
	AuditTopic   string

	// SeedFile points at a YAML corpus/alias seed for the in-memory
	// stores (dev and tests).
	SeedFile string

	// RetrievalTimeout bounds one insurer's evidence fetch. On expiry
	// that insurer resolves to unknown without affecting siblings.
	RetrievalTimeout time.Duration

	// APIKeyHash is a bcrypt hash of the service API key. Empty
	// disables request authentication (dev mode).
	APIKeyHash string

	// JWTSigningKey enables bearer-token auth for service callers.
	JWTSigningKey string

	ResolveCacheTTL time.Duration
}

// RedisConfig mirrors the connection knobs the redis platform client
// understands.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:             envOr("COVERSCOPE_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("COVERSCOPE_POSTGRES_DSN"),
		SeedFile:         os.Getenv("COVERSCOPE_SEED_FILE"),
		AuditTopic:       envOr("COVERSCOPE_AUDIT_TOPIC", "coverscope.audit.compliance"),
		APIKeyHash:       os.Getenv("COVERSCOPE_API_KEY_HASH"),
		JWTSigningKey:    os.Getenv("COVERSCOPE_JWT_SIGNING_KEY"),
		RetrievalTimeout: envDuration("COVERSCOPE_RETRIEVAL_TIMEOUT", 2*time.Second),
		ResolveCacheTTL:  envDuration("COVERSCOPE_RESOLVE_CACHE_TTL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("COVERSCOPE_REDIS_URL"),
			PoolSize:     envInt("COVERSCOPE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COVERSCOPE_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("COVERSCOPE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COVERSCOPE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COVERSCOPE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	if brokers := os.Getenv("COVERSCOPE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
