package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort     string
	MaxFileSize    int64
	CommissionCap  float64
	ProjectionRate float64
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	// Amount magnitudes above the cap are treated as parse noise
	// (premium figures mistaken for commissions), not business data.
	// Legitimately large commissions are zeroed too; raise the cap if
	// that matters for a given book of business.
	commissionCap := envFloat("COMMISSION_CAP", 500000)

	// Revenue projected for a policy with no matched commission is
	// premium times this rate.
	projectionRate := envFloat("PROJECTION_RATE", 0.10)

	return &Config{
		ServerPort:     serverPort,
		MaxFileSize:    envInt64("MAX_FILE_SIZE", 10*1024*1024), // 10 MB
		CommissionCap:  commissionCap,
		ProjectionRate: projectionRate,
	}
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
