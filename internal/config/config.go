package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr            string
	Environment     string
	LogLevel        string
	LogFormat       string
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration
	WebhookSecret   string
	UploadDir       string
	PublicBaseURL   string
	CORSOrigins     string
	ShutdownTimeout time.Duration
	SeedCatalog     bool
	AdminEmail      string
	AdminPassword   string

	SMTP SMTPConfig
}

// SMTPConfig configures order status e-mails. An empty Host disables SMTP
// delivery and notifications are only logged.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from a .env file (when present) and environment variables.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:            getenv("APP_ADDR", ":8080"),
		Environment:     getenv("APP_ENV", "development"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		DatabaseURL:     strings.TrimSpace(getenv("DATABASE_URL", "")),
		JWTSecret:       strings.TrimSpace(getenv("JWT_SECRET", "")),
		JWTTTL:          getenvDuration("JWT_TTL", 72*time.Hour),
		RedisAddr:       strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		CatalogCacheTTL: getenvDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		WebhookSecret:   strings.TrimSpace(getenv("PAYMENT_WEBHOOK_SECRET", "")),
		UploadDir:       getenv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:   strings.TrimRight(getenv("PUBLIC_BASE_URL", ""), "/"),
		CORSOrigins:     getenv("CORS_ORIGINS", "*"),
		ShutdownTimeout: getenvDuration("SHUTDOWN_TIMEOUT", 20*time.Second),
		SeedCatalog:     getenvBool("SEED_CATALOG", false),
		AdminEmail:      strings.ToLower(strings.TrimSpace(getenv("ADMIN_EMAIL", ""))),
		AdminPassword:   getenv("ADMIN_PASSWORD", ""),
		SMTP: SMTPConfig{
			Host:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: getenv("SMTP_USERNAME", ""),
			Password: getenv("SMTP_PASSWORD", ""),
			From:     getenv("SMTP_FROM", "orders@nowiht.com"),
		},
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
