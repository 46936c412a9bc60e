package config

import (
	"time"
)

// RateLimitConfig tunes the Redis token-bucket limiter. Capacity is the
// burst size; the bucket refills RefillTokens every RefillInterval.
// Keys expire after TTL so idle clients do not accumulate state.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig builds a RateLimitConfig from RATE_LIMIT_*
// environment variables and clamps the result to a usable range.
// RATE_LIMIT_BURST and RATE_LIMIT_REFILL_EVERY are accepted as
// shorthand overrides for capacity and the refill cadence.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       atoi(getenv("RATE_LIMIT_CAPACITY", "60")),
		RefillTokens:   atoi(getenv("RATE_LIMIT_REFILL_TOKENS", "1")),
		RefillInterval: parseDur(getenv("RATE_LIMIT_REFILL_INTERVAL", "1s")),
		TTL:            parseDur(getenv("RATE_LIMIT_TTL", "10m")),
		KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "fp:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}

	if burst := atoi(getenv("RATE_LIMIT_BURST", "0")); burst > 0 {
		cfg.Capacity = burst
	}
	if every := parseDur(getenv("RATE_LIMIT_REFILL_EVERY", "0s")); every > 0 {
		cfg.RefillTokens = 1
		cfg.RefillInterval = every
	}

	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// A bucket must outlive a few refill cycles or it resets to full
	// every time the key expires.
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
