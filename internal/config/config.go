package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSheets = "sheets"
	DriverMemory = "memory"
)

// Discount modes.
const (
	DiscountPerLine        = "per_line"
	DiscountPerTransaction = "per_transaction"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Sheets    SheetsConfig
	Sales     SalesConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	LogLevel       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	Driver          string
	CredentialsPath string
	CredentialsJSON string
	SpreadsheetKey  string
}

// SalesConfig tunes the sale transaction semantics.
type SalesConfig struct {
	DiscountMode string
}

// ReportingConfig holds dashboard and scheduler settings.
type ReportingConfig struct {
	LowStockThreshold int
	CronSchedule      string
	Timezone          string
}

// MongoDBConfig holds settings for the optional snapshot history.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether snapshot history should be stored.
func (m MongoDBConfig) Enabled() bool { return m.URI != "" }

// WhatsAppConfig contains credentials for low-stock alerts through the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	AlertTo       string
}

// Enabled reports whether alerts can be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" && w.PhoneNumberID != "" && w.AlertTo != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	rps, err := getenvFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := getenvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}
	threshold, err := getenvInt("LOW_STOCK_THRESHOLD", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			LogLevel:       os.Getenv("LOG_LEVEL"),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Sheets: SheetsConfig{
			Driver:          strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverSheets)),
			CredentialsPath: getenvWithDefault("GOOGLE_CREDS_PATH", "credentials.json"),
			CredentialsJSON: os.Getenv("GOOGLE_CREDS_JSON"),
			SpreadsheetKey:  strings.TrimSpace(os.Getenv("SHEET_KEY")),
		},
		Sales: SalesConfig{
			DiscountMode: strings.ToLower(getenvWithDefault("DISCOUNT_MODE", DiscountPerLine)),
		},
		Reporting: ReportingConfig{
			LowStockThreshold: threshold,
			CronSchedule:      lookupWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:          getenvWithDefault("TIMEZONE", "UTC"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "kitstock"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			AlertTo:       os.Getenv("WHATSAPP_ALERT_TO"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that configuration values are well formed. Store credentials are
// checked by the store itself when it is constructed.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative")
	}

	switch c.Sheets.Driver {
	case DriverSheets, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverSheets, DriverMemory, c.Sheets.Driver)
	}

	switch c.Sales.DiscountMode {
	case DiscountPerLine, DiscountPerTransaction:
	default:
		return fmt.Errorf("DISCOUNT_MODE must be %q or %q, got %q", DiscountPerLine, DiscountPerTransaction, c.Sales.DiscountMode)
	}

	if c.Reporting.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	return nil
}

// MaterializeCredentials writes GOOGLE_CREDS_JSON to the credentials path when the
// deployment cannot ship the file itself. An existing file is left untouched.
func (s SheetsConfig) MaterializeCredentials() (bool, error) {
	if s.CredentialsJSON == "" || s.CredentialsPath == "" {
		return false, nil
	}
	if _, err := os.Stat(s.CredentialsPath); err == nil {
		return false, nil
	}

	if dir := filepath.Dir(s.CredentialsPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return false, fmt.Errorf("create credentials dir: %w", err)
		}
	}
	if err := os.WriteFile(s.CredentialsPath, []byte(s.CredentialsJSON), 0o600); err != nil {
		return false, fmt.Errorf("write credentials file: %w", err)
	}
	return true, nil
}

// MaskedKey hides the middle of the spreadsheet key for logs and debug output.
func (s SheetsConfig) MaskedKey() string {
	return MaskSecret(s.SpreadsheetKey)
}

// MaskSecret keeps the first and last four characters of values longer than eight.
func MaskSecret(value string) string {
	if value == "" {
		return "NOT SET"
	}
	if len(value) <= 8 {
		return value
	}
	return value[:4] + "..." + value[len(value)-4:]
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// lookupWithDefault differs from getenvWithDefault in that an explicitly empty
// variable is kept, which lets operators disable a feature.
func lookupWithDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}
