package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL connection settings for the metadata store.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// IntakeConfig holds the upload validation settings.
type IntakeConfig struct {
	// AllowedExtensions is the allow-list of accepted file extensions,
	// lower-case with a leading dot (e.g. ".pdf").
	AllowedExtensions []string
}

// NotifyConfig holds SMTP settings and the single notification recipient.
type NotifyConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
	Recipient    string
}

// ErrorReportConfig targets the webhook that receives rejection and
// failure messages.
type ErrorReportConfig struct {
	WebhookURL string
}

// JanitorConfig controls the scheduled object purge.
type JanitorConfig struct {
	MaxAgeMinutes   int
	IntervalMinutes int
}

// RedeliveryConfig makes the retry contract for event-triggered
// invocations explicit.
type RedeliveryConfig struct {
	MaxAttempts        int
	InitialIntervalSec int
}

// AppConfig is the centralized configuration struct for the daemon.
// It is populated from environment variables; components receive the
// relevant section by value instead of reading the environment themselves.
type AppConfig struct {
	Port             string
	Database         DatabaseConfig
	MinIO            MinIOConfig
	Intake           IntakeConfig
	Notify           NotifyConfig
	ErrorReport      ErrorReportConfig
	Janitor          JanitorConfig
	Redelivery       RedeliveryConfig
	SweepIntervalSec int
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port: getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Intake: IntakeConfig{
			AllowedExtensions: getEnvList("ALLOWED_EXTENSIONS", nil),
		},
		Notify: NotifyConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			From:         getEnv("NOTIFY_FROM", ""),
			Recipient:    getEnv("NOTIFY_RECIPIENT", ""),
		},
		ErrorReport: ErrorReportConfig{
			WebhookURL: getEnv("ERROR_WEBHOOK_URL", ""),
		},
		Janitor: JanitorConfig{
			MaxAgeMinutes:   getEnvInt("JANITOR_MAX_AGE_MINUTES", 30),
			IntervalMinutes: getEnvInt("JANITOR_INTERVAL_MINUTES", 5),
		},
		Redelivery: RedeliveryConfig{
			MaxAttempts:        getEnvInt("REDELIVERY_MAX_ATTEMPTS", 3),
			InitialIntervalSec: getEnvInt("REDELIVERY_INITIAL_INTERVAL_SEC", 1),
		},
		SweepIntervalSec: getEnvInt("SWEEP_INTERVAL_SECONDS", 60),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList parses a comma-separated value, trimming whitespace and
// lower-casing each entry. Empty entries are dropped.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
