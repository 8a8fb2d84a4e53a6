package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DatabaseDSN    string
	RabbitURL      string
	RequestTimeout time.Duration
}

func Load() Config {
	return Config{
		Port:           getenv("PORT", "8084"),
		DatabaseDSN:    getenv("CHECKOUT_DB_DSN", ""),
		RabbitURL:      getenv("RABBITMQ_URL", ""),
		RequestTimeout: parseDuration(getenv("REQUEST_TIMEOUT", "10s"), 10*time.Second),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
