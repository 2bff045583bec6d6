package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds application configuration. Every env-gated behavior in
// the system (webhook signature bypass, cron secret bypass) branches on
// this struct rather than reading process state directly.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	// CronSecret authenticates the external scheduler calling /api/cron.
	// In production an empty value fails closed.
	CronSecret string

	// StripeWebhookSecret signs inbound payment webhooks. An empty value
	// in a non-production environment skips verification.
	StripeWebhookSecret string

	DB    DBConfig
	Email EmailConfig

	MailQueue MailQueueConfig
}

type DBConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

type MailQueueConfig struct {
	BatchSize  int
	MaxRetries int
	RetryBase  time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:             getenv("APP_SERVICE", "platform"),
		AppVersion:          getenv("APP_VERSION", "0.1.0"),
		Environment:         normalizeEnv(getenv("ENVIRONMENT", EnvDevelopment)),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		CronSecret:          strings.TrimSpace(getenv("CRON_SECRET", "")),
		StripeWebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		DB: DBConfig{
			Host:            getenv("DATABASE_HOST", "localhost"),
			Port:            getenv("DATABASE_PORT", "5432"),
			Name:            getenv("DATABASE_NAME", "platform"),
			User:            getenv("DATABASE_USER", "postgres"),
			Password:        getenv("DATABASE_PASSWORD", ""),
			SSLMode:         getenv("DATABASE_SSLMODE", "disable"),
			MaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
			MaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
			ConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		},
		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "no-reply@nakmuayhub.com"),
		},
		MailQueue: MailQueueConfig{
			BatchSize:  getenvInt("MAIL_QUEUE_BATCH_SIZE", 10),
			MaxRetries: getenvInt("MAIL_QUEUE_MAX_RETRIES", 3),
			RetryBase:  time.Duration(getenvInt("MAIL_QUEUE_RETRY_BASE_SECONDS", 300)) * time.Second,
		},
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func normalizeEnv(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == EnvProduction {
		return EnvProduction
	}
	return EnvDevelopment
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
