package app

import (
	"os"
	"strconv"
	"time"

	"github.com/threatcombat/threatcombat/pkg/jwtx"
)

type Config struct {
	Issuer    string        // Issuer claim for session tokens
	JWTSecret string        // Required: HMAC secret for signing session tokens
	TokenTTL  time.Duration // Session token lifetime (default: 7 days)

	// TokenInBody returns the session token in the login response body in
	// addition to the cookie, for non-browser clients (default: true).
	TokenInBody bool

	LockoutThreshold int           // Failed logins per IP before lockout (default: 5)
	LockoutWindow    time.Duration // Window the threshold counts over (default: 1h)
	VerifyTTL        time.Duration // Email verification token lifetime (default: 24h)
	ResetTTL         time.Duration // Password reset token lifetime (default: 1h)

	DatabaseFile string // Path to SQLite database file (default: ./threatcombat.db)
	PepperFile   string // Path to file containing pepper for password hashing (default: ./pepper)

	// Optional first super admin, created at startup when the email does not
	// exist yet. Both fields must be set for seeding to happen.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string

	SMTPHost     string // Optional: SMTP relay; email logs locally when unset
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	BaseURL      string // Public base URL for links in email (default: http://localhost:8080)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:    getEnvOrDefault("ISSUER", "threatcombat"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDurationOrDefault("TOKEN_TTL", jwtx.DefaultSessionTTL),

		TokenInBody: getEnvBoolOrDefault("TOKEN_IN_BODY", true),

		LockoutThreshold: getEnvIntOrDefault("LOCKOUT_THRESHOLD", 5),
		LockoutWindow:    getEnvDurationOrDefault("LOCKOUT_WINDOW", time.Hour),
		VerifyTTL:        getEnvDurationOrDefault("VERIFY_TOKEN_TTL", 24*time.Hour),
		ResetTTL:         getEnvDurationOrDefault("RESET_TOKEN_TTL", time.Hour),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "threatcombat.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		BootstrapAdminName:     getEnvOrDefault("BOOTSTRAP_ADMIN_NAME", "Administrator"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@threatcombat.org"),
		BaseURL:      getEnvOrDefault("BASE_URL", "http://localhost:8080"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are read as minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
