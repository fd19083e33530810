package config

import (
	"os"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr             string
	DatabaseURL      string
	Redis            RedisConfig
	KafkaBrokers     string
	KafkaEventsTopic string
	JWTSigningKey    string
}

// RedisConfig holds cache connection settings. An empty URL disables caching.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CacheTTL bounds staleness of read-through repository caches.
var CacheTTL = 60 * time.Second

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	addr := os.Getenv("RISKBOARD_ADDR")
	if addr == "" {
		addr = ":4000"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_EVENTS_TOPIC")
	if topic == "" {
		topic = "riskboard.domain-events"
	}

	return Config{
		Addr:             addr,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		KafkaEventsTopic: topic,
		JWTSigningKey:    jwtSigningKey,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}
