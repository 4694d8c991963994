package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultInlineFallbackMaxBytes caps the inline data-URL fallback used
	// when the blob store rejects a promotion upload. Files above the cap
	// are rejected instead of being encoded into the local snapshot.
	DefaultInlineFallbackMaxBytes = 2 * 1024 * 1024

	// DefaultUploadTimeout cancels a blob upload that takes too long
	DefaultUploadTimeout = 45 * time.Second

	// DefaultUploadStallTimeout is the shorter timer that reports synthetic
	// progress when an upload stops reporting, without cancelling it
	DefaultUploadStallTimeout = 8 * time.Second
)

type Config struct {
	ServerPort  string
	Environment string
	DBPath      string
	UploadDir   string
	// Remote document store (Turso/libsql)
	TursoDatabaseURL string
	TursoAuthToken   string
	// Realtime promotions feed (websocket)
	PromotionsFeedURL string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
	// Upload behavior
	UploadTimeout          time.Duration
	UploadStallTimeout     time.Duration
	InlineFallbackMaxBytes int64
	// Simulated classifier
	OracleMinDelay    time.Duration
	OracleMaxDelay    time.Duration
	OracleFailureRate float64
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTo       string
	EmailTestMode bool // When true, emails are logged to console instead of sent
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		DBPath:                 getEnv("DB_PATH", "db/despacho.db"),
		UploadDir:              getEnv("UPLOAD_DIR", "static/uploads"),
		TursoDatabaseURL:       getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:         getEnv("TURSO_AUTH_TOKEN", ""),
		PromotionsFeedURL:      getEnv("PROMOTIONS_FEED_URL", ""),
		R2AccountID:            getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:          getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:      getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:           getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:            getEnv("R2_PUBLIC_URL", ""),
		UploadTimeout:          getEnvDuration("UPLOAD_TIMEOUT", DefaultUploadTimeout),
		UploadStallTimeout:     getEnvDuration("UPLOAD_STALL_TIMEOUT", DefaultUploadStallTimeout),
		InlineFallbackMaxBytes: getEnvInt64("INLINE_FALLBACK_MAX_BYTES", DefaultInlineFallbackMaxBytes),
		OracleMinDelay:         getEnvDuration("ORACLE_MIN_DELAY", 1500*time.Millisecond),
		OracleMaxDelay:         getEnvDuration("ORACLE_MAX_DELAY", 3*time.Second),
		OracleFailureRate:      getEnvFloat("ORACLE_FAILURE_RATE", 0.15),
		ResendAPIKey:           getEnv("RESEND_API_KEY", ""),
		EmailFrom:              getEnv("EMAIL_FROM", "noreply@despacho.app"),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "Despacho"),
		EmailTo:                getEnv("EMAIL_TO", ""),
		EmailTestMode:          getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("[WARNING] Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("[WARNING] Invalid value for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[WARNING] Invalid value for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
