package config

import (
	"os"
	"strconv"
	"time"
)

// CacheConfig defines settings for the drop-status response cache. When
// Enabled is false or no Redis client is configured, caching is disabled
// and status reads go straight to the database. Status responses are tiny
// and change on every purchase/reveal, so the TTL defaults to a few
// seconds: just enough to absorb a refresh storm during a busy mint.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "3s")),
		Prefix:  getenv("CACHE_PREFIX", "drop"),
	}
}

// Helper functions shared with redis.go and ratelimit.go.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
