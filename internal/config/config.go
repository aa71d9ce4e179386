// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MigrateOnStart runs the embedded goose migrations before serving.
	MigrateOnStart bool

	// RatesFile overrides the embedded rate table. Empty uses the embedded one.
	RatesFile string

	// Location is the business time zone used for calendar-day rules and
	// email formatting. TIMEZONE, defaults to Europe/Sofia.
	Location *time.Location

	Booking BookingConfig
	Sheets  SheetsConfig
	Email   EmailConfig
	Breaker BreakerConfig
	Storage StorageConfig
	Admin   AdminConfig

	// MetricsEnabled exposes /metrics. Defaults to true.
	MetricsEnabled bool

	// MaxBodyBytes caps JSON request bodies. Defaults to 64 KiB.
	MaxBodyBytes int64
}

// BookingConfig holds the date-range rules of each entry point.
type BookingConfig struct {
	QuickBookingMinDays   int
	QuickBookingNoSameDay bool
	WizardMinDays         int
}

// SheetsConfig points at the spreadsheet-backed booking endpoint.
type SheetsConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// EmailConfig holds the EmailJS credentials and template ids.
type EmailConfig struct {
	BaseURL          string
	ServiceID        string
	PublicKey        string
	PrivateKey       string
	CustomerTemplate string
	OwnerTemplate    string
	ContactTemplate  string
	OwnerEmail       string
	Timeout          time.Duration
}

// BreakerConfig tunes the circuit breakers around both upstreams.
type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
	Interval         time.Duration
}

// StorageConfig configures the S3-compatible bucket for car photos.
// An empty Bucket disables uploads.
type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
	MaxBytes  int64
}

// AdminConfig holds the dashboard session settings.
type AdminConfig struct {
	// JWTSecret signs session tokens. Required, at least 32 bytes.
	JWTSecret    []byte
	SessionTTL   time.Duration
	CookieSecure bool
}

// minSecretLen is the shortest accepted ADMIN_JWT_SECRET.
const minSecretLen = 32

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
// Returns an error listing any required variables that are not set and any
// values that do not parse.
func Load() (Config, error) {
	_ = godotenv.Load()

	p := &parser{}
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MigrateOnStart: p.boolVar("MIGRATE_ON_START", false),
		RatesFile:      os.Getenv("RATES_FILE"),
		Booking: BookingConfig{
			QuickBookingMinDays:   p.intVar("QUICK_BOOKING_MIN_DAYS", 5),
			QuickBookingNoSameDay: p.boolVar("QUICK_BOOKING_DISALLOW_SAME_DAY", true),
			WizardMinDays:         p.intVar("WIZARD_MIN_DAYS", 1),
		},
		Sheets: SheetsConfig{
			URL:     os.Getenv("BOOKING_SHEET_URL"),
			Token:   os.Getenv("BOOKING_SHEET_TOKEN"),
			Timeout: p.durationVar("BOOKING_SHEET_TIMEOUT", 10*time.Second),
		},
		Email: EmailConfig{
			BaseURL:          getEnv("EMAILJS_BASE_URL", "https://api.emailjs.com"),
			ServiceID:        os.Getenv("EMAILJS_SERVICE_ID"),
			PublicKey:        os.Getenv("EMAILJS_PUBLIC_KEY"),
			PrivateKey:       os.Getenv("EMAILJS_PRIVATE_KEY"),
			CustomerTemplate: os.Getenv("EMAILJS_TEMPLATE_CUSTOMER"),
			OwnerTemplate:    os.Getenv("EMAILJS_TEMPLATE_OWNER"),
			ContactTemplate:  os.Getenv("EMAILJS_TEMPLATE_CONTACT"),
			OwnerEmail:       os.Getenv("OWNER_EMAIL"),
			Timeout:          p.durationVar("EMAILJS_TIMEOUT", 10*time.Second),
		},
		Breaker: BreakerConfig{
			FailureThreshold: uint32(p.intVar("BREAKER_FAILURE_THRESHOLD", 5)),
			Timeout:          p.durationVar("BREAKER_OPEN_TIMEOUT", 30*time.Second),
			Interval:         p.durationVar("BREAKER_INTERVAL", time.Minute),
		},
		Storage: StorageConfig{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "eu-central-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
			MaxBytes:  int64(p.intVar("MAX_IMAGE_BYTES", 5<<20)),
		},
		Admin: AdminConfig{
			SessionTTL:   p.durationVar("ADMIN_SESSION_TTL", 12*time.Hour),
			CookieSecure: p.boolVar("ADMIN_COOKIE_SECURE", true),
		},
		MetricsEnabled: p.boolVar("METRICS_ENABLED", true),
		MaxBodyBytes:   int64(p.intVar("MAX_BODY_BYTES", 64<<10)),
	}

	tz := getEnv("TIMEZONE", "Europe/Sofia")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		p.invalid = append(p.invalid, "TIMEZONE")
	}
	cfg.Location = loc

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	secret := os.Getenv("ADMIN_JWT_SECRET")
	switch {
	case secret == "":
		missing = append(missing, "ADMIN_JWT_SECRET")
	case len(secret) < minSecretLen:
		p.invalid = append(p.invalid, "ADMIN_JWT_SECRET")
	}
	cfg.Admin.JWTSecret = []byte(secret)

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(p.invalid, ", "))
	}

	return cfg, nil
}

// parser reads typed variables and records the names of those that do not parse.
type parser struct {
	invalid []string
}

func (p *parser) intVar(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return n
}

func (p *parser) boolVar(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return b
}

func (p *parser) durationVar(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.invalid = append(p.invalid, key)
		return fallback
	}
	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
