package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration

	PostgresDSN string
	RedisURL    string

	// StoreTimeout bounds every repository call made while processing a
	// request; a hung backend fails the request instead of stalling it.
	StoreTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("GATEPASS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("GATEPASS_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; override in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := 12 * time.Hour
	if raw := os.Getenv("GATEPASS_TOKEN_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			tokenTTL = d
		}
	}

	storeTimeout := 5 * time.Second
	if raw := os.Getenv("GATEPASS_STORE_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			storeTimeout = d
		}
	}

	var brokers []string
	if raw := os.Getenv("GATEPASS_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("GATEPASS_KAFKA_TOPIC")
	if topic == "" {
		topic = "gatepass.transactions"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		PostgresDSN:   os.Getenv("GATEPASS_POSTGRES_DSN"),
		RedisURL:      os.Getenv("GATEPASS_REDIS_URL"),
		StoreTimeout:  storeTimeout,
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
	}
}
