package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	Store StoreConfig
	Admin AdminConfig

	OrderLog   OrderLogConfig
	Cloudinary CloudinaryConfig

	CatalogPath string

	Cart  CartConfig
	Redis RedisConfig
	SQL   SQLConfig

	OTelEnabled bool
}

// StoreConfig is the shop identity shown to buyers and used for the chat hand-off.
type StoreConfig struct {
	Name       string
	Phone      string
	PhonePlain string
	Location   string
	ChatBase   string
}

type AdminConfig struct {
	Username string
	Password string
}

// OrderLogConfig points at the spreadsheet webhook. An empty URL disables order logging.
type OrderLogConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// CloudinaryConfig disables image uploads when either field is empty.
type CloudinaryConfig struct {
	CloudName    string
	UploadPreset string
}

type CartConfig struct {
	Store string // memory, redis or sql
	TTL   time.Duration
}

type RedisConfig struct {
	URL       string
	Namespace string
}

type SQLConfig struct {
	Driver string
	DSN    string
}

func Load() Config {
	loadDotEnv()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		Store: StoreConfig{
			Name:       getEnv("STORE_NAME", "Hafsa's Boutique"),
			Phone:      getEnv("STORE_PHONE", "+254"),
			PhonePlain: getEnv("STORE_PHONE_PLAIN", "254700000000"),
			Location:   getEnv("STORE_LOCATION", "Eastleigh"),
			ChatBase:   getEnv("CHAT_BASE_URL", "https://wa.me"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "hafsa2025"),
		},
		OrderLog: OrderLogConfig{
			WebhookURL: getEnv("ORDER_LOG_WEBHOOK_URL", ""),
			Timeout:    getEnvDuration("ORDER_LOG_TIMEOUT", 10*time.Second),
		},
		Cloudinary: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		},
		CatalogPath: getEnv("CATALOG_PATH", ""),
		Cart: CartConfig{
			Store: strings.ToLower(getEnv("CART_STORE", "memory")),
			TTL:   getEnvDuration("CART_TTL", 30*24*time.Hour),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Namespace: getEnv("REDIS_NAMESPACE", "storefront"),
		},
		SQL: SQLConfig{
			Driver: getEnv("SQL_DRIVER", "sqlite3"),
			DSN:    getEnv("SQL_DSN", "file:storefront.db?_journal_mode=WAL&_busy_timeout=5000"),
		},
		OTelEnabled: getEnvBool("OTEL_ENABLED", false),
	}
}

// loadDotEnv reads .env.local for local development only; the process environment wins.
func loadDotEnv() {
	if os.Getenv("APP_ENV") != "local" {
		return
	}
	if err := godotenv.Load(".env.local"); err != nil {
		slog.Warn(".env.local not loaded, relying on process environment", slog.Any("err", err))
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
