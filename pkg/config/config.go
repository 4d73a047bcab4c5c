// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Catalog       CatalogConfig
	OCR           OCRConfig
	Ledger        LedgerConfig
	Archive       ArchiveConfig
	Telegram      TelegramConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host               string
	Port               int
	UploadDir          string
	MaxUploadBytes     int64
	RateLimitPerSecond int
	RateLimitBurst     int
}

// DatabaseConfig holds PostgreSQL settings for the review queue.
// Enabled gates the whole review persistence layer.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// CatalogConfig locates the supplier catalog and tunes matching.
type CatalogConfig struct {
	Path          string // empty means the built-in catalog
	OwnName       string
	FormThreshold int
	OCRThreshold  int
}

// OCRConfig selects the OCR binary and language pack.
type OCRConfig struct {
	Binary   string
	Language string
}

// LedgerConfig locates the ledger workbook.
type LedgerConfig struct {
	WorkbookPath string
}

// ArchiveConfig locates the document archive root.
type ArchiveConfig struct {
	Root string
}

// TelegramConfig holds the bot credentials. An empty token disables the bot.
type TelegramConfig struct {
	Token         string
	AllowedChatID int64
}

// ObservabilityConfig toggles the metrics endpoint
type ObservabilityConfig struct {
	MetricsEnabled bool
}

// ProfilingConfig toggles the pprof side server
type ProfilingConfig struct {
	Enabled bool
	Port    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Port:               getEnvInt("SERVER_PORT", 8080),
			UploadDir:          getEnv("UPLOAD_DIR", os.TempDir()),
			MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_MB", 25)) << 20,
			RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("REVIEW_QUEUE_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "fiscaldoc"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Catalog: CatalogConfig{
			Path:          getEnv("CATALOG_PATH", ""),
			OwnName:       getEnv("CATALOG_OWN_NAME", ""),
			FormThreshold: getEnvInt("MATCH_FORM_THRESHOLD", 75),
			OCRThreshold:  getEnvInt("MATCH_OCR_THRESHOLD", 85),
		},
		OCR: OCRConfig{
			Binary:   getEnv("OCR_BINARY", "tesseract"),
			Language: getEnv("OCR_LANGUAGE", "por"),
		},
		Ledger: LedgerConfig{
			WorkbookPath: getEnv("LEDGER_WORKBOOK", "contas.xlsx"),
		},
		Archive: ArchiveConfig{
			Root: getEnv("ARCHIVE_ROOT", "archive"),
		},
		Telegram: TelegramConfig{
			Token:         getEnv("TELEGRAM_BOT_TOKEN", ""),
			AllowedChatID: int64(getEnvInt("TELEGRAM_ALLOWED_CHAT_ID", 0)),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		},
		Profiling: ProfilingConfig{
			Enabled: getEnvBool("PPROF_ENABLED", false),
			Port:    getEnvInt("PPROF_PORT", 6060),
		},
	}

	if cfg.Database.Enabled && cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required when the review queue is enabled")
	}
	if cfg.Catalog.FormThreshold <= 0 || cfg.Catalog.FormThreshold > 100 {
		return nil, fmt.Errorf("MATCH_FORM_THRESHOLD must be in (0, 100], got %d", cfg.Catalog.FormThreshold)
	}
	if cfg.Catalog.OCRThreshold <= 0 || cfg.Catalog.OCRThreshold > 100 {
		return nil, fmt.Errorf("MATCH_OCR_THRESHOLD must be in (0, 100], got %d", cfg.Catalog.OCRThreshold)
	}

	return cfg, nil
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
