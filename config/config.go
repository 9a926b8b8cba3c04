package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	JWTSecret     string
	AllowedOrigin string
	// Storage backend for ad requests: postgres or memory
	Store string
	// DB Config
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	DBAutoMigrate     bool
	// R2 Storage (creative uploads). Uploads are disabled when the bucket is unset.
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	MaxUploadSizeMB   int64
	R2UploadTimeout   time.Duration
	// Cache
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AdCacheTTL    time.Duration
	// Ad booking rules
	AdStartGrace      time.Duration
	AdRecentLimit     int
	AdHistoryWindow   time.Duration
	AdRetentionWindow time.Duration
	AdPurgeInterval   time.Duration
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Key the limiter on X-Forwarded-For only behind a proxy that appends it
	TrustProxyHeaders bool
}

func LoadConfig() *Config {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// .env is optional; containers pass real env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		Store:         getEnv("STORE", StorePostgres),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", 15*time.Minute),
		DBAutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", false),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
		MaxUploadSizeMB:   getInt64Env("MAX_UPLOAD_SIZE_MB", 5),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		CacheBackend:  getEnv("CACHE_BACKEND", CacheMemory),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		AdCacheTTL:    getDurationEnv("AD_CACHE_TTL", 5*time.Minute),

		// Defaults: 24h start grace, 5 dashboard items, 30 day history and retention, hourly purge
		AdStartGrace:      getDurationEnv("AD_START_GRACE", 24*time.Hour),
		AdRecentLimit:     getIntEnv("AD_RECENT_LIMIT", 5),
		AdHistoryWindow:   getDurationEnv("AD_HISTORY_WINDOW", 30*24*time.Hour),
		AdRetentionWindow: getDurationEnv("AD_RETENTION_WINDOW", 30*24*time.Hour),
		AdPurgeInterval:   getDurationEnv("AD_PURGE_INTERVAL", time.Hour),

		RateLimitRPS:   getFloat64Env("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 40),

		TrustProxyHeaders: getBoolEnv("TRUST_PROXY_HEADERS", false),
	}

	cfg.Validate()
	return cfg
}

func (c *Config) Validate() {
	if err := c.Check(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if c.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
}

// UploadsEnabled reports whether creative file uploads can be stored.
func (c *Config) UploadsEnabled() bool {
	return c.R2BucketName != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
