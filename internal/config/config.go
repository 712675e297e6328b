package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	// Clinic identity
	ClinicName     string
	ClinicEmail    string
	ClinicTimezone string

	// Primary email channel
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	AWSRegion         string
	SESFromEmail      string
	SESFromName       string

	// Secondary SMTP relay
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	SMTPFromName  string

	// Delivery policy
	DeliveryMaxAttempts int
	DeliveryBaseDelay   time.Duration
	DeliveryMaxDelay    time.Duration
	DeliveryTimeout     time.Duration
	ParentConfirmation  bool

	// Duplicate-submission guard
	RedisAddr     string
	RedisPassword string
	DedupeWindow  time.Duration

	// Booking audit log
	BookingLogPath string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		ClinicName:     getEnv("CLINIC_NAME", "Tots and Teens Child Care Clinic"),
		ClinicEmail:    getEnv("CLINIC_EMAIL", ""),
		ClinicTimezone: getEnv("CLINIC_TZ", "Asia/Kolkata"),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Tots and Teens Bookings"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Tots and Teens Bookings"),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", ""),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Tots and Teens Bookings"),

		DeliveryMaxAttempts: getEnvAsInt("DELIVERY_MAX_ATTEMPTS", 4),
		DeliveryBaseDelay:   getEnvAsDuration("DELIVERY_BASE_DELAY", 500*time.Millisecond),
		DeliveryMaxDelay:    getEnvAsDuration("DELIVERY_MAX_DELAY", 15*time.Second),
		DeliveryTimeout:     getEnvAsDuration("DELIVERY_TIMEOUT", 2*time.Minute),
		ParentConfirmation:  getEnvAsBool("PARENT_CONFIRMATION_ENABLED", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DedupeWindow:  getEnvAsDuration("DEDUPE_WINDOW", 10*time.Minute),

		BookingLogPath: getEnv("BOOKING_LOG_PATH", "bookings.log"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
