package cmd

import (
	"log"
	"os"
	"time"
)

var config = Config{
	RequestTimeout: 30 * time.Second,
}

type Config struct {
	// Common config
	APIBaseURL     string // Base URL of the remote answering service
	SessionStore   string // Session store driver: file, redis, or memory
	SessionFile    string // Backing file for the file driver
	RedisAddr      string // Address for the redis driver
	RequestTimeout time.Duration

	// Telemetry config
	TelemetryEnabled bool
	OTLPEndpoint     string

	// Credential exchange options
	Email         string
	Password      string
	GoogleIDToken string

	// Chat options
	NoRAG bool
}

func loadOptionalFromEnv(dest *string, key string) {
	parseOptionalFromEnv(dest, key, func(v string) (string, error) { return v, nil })
}

func parseOptionalFromEnv[T any](dest *T, key string, parseFn func(string) (T, error)) {
	str := os.Getenv(key)
	if str == "" {
		return // Leave default value
	}
	v, err := parseFn(str)
	if err != nil {
		log.Fatalf("failed to parse environment variable '%s' value '%s' as '%T': %v", key, str, *dest, err)
	}
	*dest = v
}
