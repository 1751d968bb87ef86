package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string
	LogLevel    string

	// Decode configuration
	DefaultFormat   string
	MaxPayloadBytes int

	// Cache configuration
	EnableCache          bool
	RedisURL             string
	RedisPassword        string
	RedisDB              int
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration

	// Rate limiting
	RateLimitPerMinute int

	// PubNub relay configuration
	EnableRelay         bool
	PubNubPublishKey    string
	PubNubSubscribeKey  string
	PubNubSecretKey     string
	PubNubUUID          string
	PubNubScanChannel   string
	PubNubResultChannel string

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

// LoadConfig reads a .env file when one exists, then the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Decode
		DefaultFormat:   getEnv("DEFAULT_FORMAT", "array"),
		MaxPayloadBytes: getEnvAsInt("MAX_PAYLOAD_BYTES", 2048),

		// Cache
		EnableCache:          getEnvAsBool("ENABLE_CACHE", true),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", "10m"),
		CacheCleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", "30m"),

		// Rate limiting
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 120),

		// PubNub
		EnableRelay:         getEnvAsBool("ENABLE_RELAY", false),
		PubNubPublishKey:    getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey:  getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:     getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:          getEnv("PUBNUB_UUID", "ipsqr-relay"),
		PubNubScanChannel:   getEnv("PUBNUB_SCAN_CHANNEL", "ips-qr-scans"),
		PubNubResultChannel: getEnv("PUBNUB_RESULT_CHANNEL", "ips-qr-results"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
