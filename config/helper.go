package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
)

func getInt32Env(key string, fallback int32) int32 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
		log.Printf("Invalid int32 for %s, using fallback", key)
	}
	return fallback
}

func getFloat64Env(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Invalid bool for %s, using fallback", key)
	}
	return fallback
}

// Check returns the first configuration problem that makes the service unable to start.
func (c *Config) Check() error {
	switch c.Store {
	case StorePostgres:
		if c.DBUrl == "" {
			return errors.New("DB_DSN environment variable is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.AdRecentLimit < 1 {
		return errors.New("AD_RECENT_LIMIT must be positive")
	}
	if c.AdStartGrace < 0 {
		return errors.New("AD_START_GRACE must not be negative")
	}
	if c.UploadsEnabled() && c.R2PublicURL == "" {
		return errors.New("R2_PUBLIC_URL is required when R2_BUCKET_NAME is set")
	}
	return nil
}
