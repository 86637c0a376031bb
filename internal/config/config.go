package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at start-up and treated as read-only afterwards.
type Config struct {
	AppPort        string
	AppEnv         string
	LogLevel       string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	// TokenExpiration is the validity window of confirmation tokens.
	TokenExpiration time.Duration
	// TokenRetention is how long expired tokens linger before DynamoDB TTL may purge them.
	TokenRetention  time.Duration
	ConfirmationURL string
	BcryptCost      int
	Notifier        string // "smtp" | "sns" | "log"
	SMTPHost        string
	SMTPPort        string
	SMTPFrom        string
	SMTPUsername    string
	SMTPPassword    string
	SNSTopicARN     string
	RedisAddr       string // empty disables the shared rate limiter
	RedisPassword   string
	RateLimitRPS    float64
	RateLimitBurst  int
	AllowedOrigins  []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users  string
	Tokens string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:  getEnv("DYNAMO_TABLE_USERS", "users"),
			Tokens: getEnv("DYNAMO_TABLE_TOKENS", "tokens"),
		},
		TokenExpiration: getEnvDuration("TOKEN_EXPIRATION", 24*time.Hour),
		TokenRetention:  getEnvDuration("TOKEN_RETENTION", 7*24*time.Hour),
		ConfirmationURL: getEnv("CONFIRMATION_URL", "http://localhost:3000/v1/confirm-email"),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		Notifier:        getEnv("NOTIFIER", "log"),
		SMTPHost:        getEnv("SMTP_HOST", "localhost"),
		SMTPPort:        getEnv("SMTP_PORT", "1025"),
		SMTPFrom:        getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SNSTopicARN:     getEnv("SNS_TOPIC_ARN", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration parses Go duration syntax ("30m", "24h"). Non-positive
// values are rejected in favour of the fallback.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
