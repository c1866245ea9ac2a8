// Package config reads service configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures the full service configuration.
type Server struct {
	Addr string

	// DatabaseURL selects the Postgres stores; empty runs on in-memory stores
	// (dev and tests only).
	DatabaseURL string

	// RedisURL selects the Redis-backed replay scan log; empty uses the
	// in-process log.
	RedisURL string

	// KafkaBrokers enables the async audit sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// QRSigningKey signs scan-token payloads. Must be overridden in
	// production.
	QRSigningKey string

	// FingerprintDevices derives device hashes from User-Agent headers.
	FingerprintDevices bool

	AuditBufferSize int
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("TRUSTGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	signingKey := os.Getenv("QR_SIGNING_KEY")
	if signingKey == "" {
		// Development default; override in production.
		signingKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if topic == "" {
		topic = "trustgate.audit"
	}

	bufferSize := 1024
	if raw := os.Getenv("AUDIT_BUFFER_SIZE"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			bufferSize = parsed
		}
	}

	return Server{
		Addr:               addr,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         topic,
		QRSigningKey:       signingKey,
		FingerprintDevices: os.Getenv("DEVICE_FINGERPRINTING") != "false",
		AuditBufferSize:    bufferSize,
		ShutdownTimeout:    10 * time.Second,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
