package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort        string
	SQLiteDSN      string
	CORSOrigin     string
	GatewayBaseURL string
	GatewayTimeout time.Duration
	SweepInterval  time.Duration
	StaleThreshold time.Duration
	MerchantID     string
	MerchantKey    string
	MerchantSalt   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func Load() Config {
	return Config{
		AppPort:        getenv("APP_PORT", "8080"),
		SQLiteDSN:      getenv("SQLITE_DSN", "./app.db"),
		CORSOrigin:     getenv("CORS_ORIGIN", "http://localhost:5173"),
		GatewayBaseURL: getenv("GATEWAY_BASE_URL", "https://test.payu.in"),
		GatewayTimeout: getDuration("GATEWAY_TIMEOUT", 5*time.Second),
		SweepInterval:  getDuration("SWEEP_INTERVAL", time.Hour),
		StaleThreshold: getDuration("STALE_THRESHOLD", 15*time.Minute),
		MerchantID:     getenv("MERCHANT_ID", "demo-merchant"),
		MerchantKey:    getenv("MERCHANT_KEY", "gtKFFx"),
		MerchantSalt:   getenv("MERCHANT_SALT", "eCwWELxi"),
	}
}
