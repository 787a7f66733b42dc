package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppPort string

	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	// Bound on the startup reachability check against Redis.
	RedisPingTimeout time.Duration

	// Admission policy for the rate-limit interceptor.
	RateLimitRequests      int
	RateLimitWindowSeconds int

	SessionTTL time.Duration

	// Bound on individual key-value store operations. A timed-out call
	// counts as a failure for the caller.
	KVTimeout time.Duration

	Breaker BreakerConfig
}

type BreakerConfig struct {
	FailureRateThreshold float64
	MinimumCalls         int
	WaitOpen             time.Duration
	HalfOpenCalls        int
	SlidingWindowSize    int
}

func Load() Config {

	cfg := Config{

		AppPort: getString("APP_PORT", "8080"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisPingTimeout: time.Duration(getInt("REDIS_PING_TIMEOUT_MS", 2000)) * time.Millisecond,

		RateLimitRequests:      getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSeconds: getInt("RATE_LIMIT_WINDOW_SECONDS", 60),

		SessionTTL: time.Duration(getInt("SESSION_TTL_MINUTES", 30)) * time.Minute,

		KVTimeout: time.Duration(getInt("KV_TIMEOUT_MS", 500)) * time.Millisecond,

		Breaker: BreakerConfig{
			FailureRateThreshold: getFloat("BREAKER_FAILURE_RATE_THRESHOLD", 0.5),
			MinimumCalls:         getInt("BREAKER_MINIMUM_CALLS", 10),
			WaitOpen:             time.Duration(getInt("BREAKER_WAIT_OPEN_SECONDS", 10)) * time.Second,
			HalfOpenCalls:        getInt("BREAKER_HALF_OPEN_CALLS", 3),
			SlidingWindowSize:    getInt("BREAKER_SLIDING_WINDOW_SIZE", 20),
		},
	}

	return cfg

}

func getString(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func getInt(name string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getFloat(name string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
