package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultRecaptchaVerifyURL is Google's siteverify endpoint
	DefaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	// DefaultSchedulingURL is the booking page visitors reach after passing the bot check
	DefaultSchedulingURL = "https://calendly.com/zynexsolutions/30min"
)

// ErrMissingRecaptchaSecret is returned when no reCAPTCHA secret is configured.
// The server still starts; the verification endpoint fails closed per request.
var ErrMissingRecaptchaSecret = errors.New("RECAPTCHA_SECRET_KEY is not set")

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	// Other
	AllowedOrigins   []string
	AppURL           string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Google reCAPTCHA v3
	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration
	// Scheduling link reached after a passing verification
	SchedulingURL string
	// Contact form storage ("sql" or "firestore")
	ContactStore             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirestoreCollection      string
	// Email (Resend)
	ResendAPIKey       string
	EmailFrom          string
	EmailFromName      string
	EmailTestMode      bool // When true, emails are logged to console instead of sent
	ContactNotifyEmail string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		ServerPort:               getEnv("SERVER_PORT", "8080"),
		DBPath:                   getEnv("DB_PATH", "db/app.db"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		AllowedOrigins:           strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:                   getEnv("APP_URL", "http://localhost:8080"),
		TursoDatabaseURL:         getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:           getEnv("TURSO_AUTH_TOKEN", ""),
		RecaptchaSiteKey:         getEnv("RECAPTCHA_SITE_KEY", ""),
		RecaptchaSecretKey:       os.Getenv("RECAPTCHA_SECRET_KEY"),
		RecaptchaVerifyURL:       getEnv("RECAPTCHA_VERIFY_URL", DefaultRecaptchaVerifyURL),
		RecaptchaTimeout:         getEnvDuration("RECAPTCHA_TIMEOUT", 10*time.Second),
		SchedulingURL:            getEnv("SCHEDULING_URL", DefaultSchedulingURL),
		ContactStore:             strings.ToLower(getEnv("CONTACT_STORE", "sql")),
		FirestoreProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
		FirestoreCredentialsFile: getEnv("FIRESTORE_CREDENTIALS_FILE", ""),
		FirestoreCollection:      getEnv("FIRESTORE_COLLECTION", "contact_submissions"),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		EmailFrom:                getEnv("EMAIL_FROM", "noreply@zynexsolutions.com"),
		EmailFromName:            getEnv("EMAIL_FROM_NAME", "Zynex Solutions"),
		EmailTestMode:            getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		ContactNotifyEmail:       getEnv("CONTACT_NOTIFY_EMAIL", ""),
	}

	if err := cfg.ValidateRecaptcha(); err != nil {
		log.Printf("[WARNING] %v. Consultation verification will fail closed until it is configured.", err)
	}

	return cfg
}

// ValidateRecaptcha reports whether the server-held reCAPTCHA secret is present
func (c *Config) ValidateRecaptcha() error {
	if strings.TrimSpace(c.RecaptchaSecretKey) == "" {
		return ErrMissingRecaptchaSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[WARNING] Invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
