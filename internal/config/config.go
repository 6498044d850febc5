package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/crucial707/it-inventory/internal/db"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret     = "supersecretkey"
	defaultSessionSecret = "dev-session-secret-change-me"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 10).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// Env is "dev" (default) or "prod". When "prod", secrets must be set and not the defaults.
	Env string

	JWTSecret string
	// JWTExpireHours is the bearer token and session lifetime in hours (default 24).
	JWTExpireHours int
	// SessionSecret signs the browser session cookie.
	SessionSecret string

	// SystemActor is recorded as create_user on inserted assets (default "admin").
	SystemActor string

	// AdminUsername and AdminPassword seed the first admin account when both are set
	// and no user with that name exists.
	AdminUsername string
	AdminPassword string

	// UploadDir stores invoice files; they are served under /uploads.
	UploadDir string
	// MaxUploadBytes caps request bodies on upload routes (default 10 MiB).
	MaxUploadBytes int64
	// LogoPath is the company logo placed on exported spreadsheets. Missing file means a placeholder.
	LogoPath string

	// ExportDir receives scheduled inventory snapshots.
	ExportDir string
	// ExportSchedule is a cron expression (e.g. "0 2 * * *"). Empty disables snapshots.
	ExportSchedule string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS with credentials.
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent.
	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A .env file in the working directory, when
// present, fills variables that are not already set.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "3000"),

		DBHost: getEnv("DB_HOST", "127.0.0.1"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "inventory_management"),
		DBUser: getEnv("DB_USER", "continuum_user"),
		DBPass: getEnv("DB_PASS", "yourpassword"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		Env:            getEnv("ENV", "dev"),
		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		SessionSecret:  getEnv("SESSION_SECRET", defaultSessionSecret),

		SystemActor:   getEnv("SYSTEM_ACTOR", "admin"),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		LogoPath:       getEnv("LOGO_PATH", "media/company-logo.png"),

		ExportDir:      getEnv("EXPORT_DIR", "exports"),
		ExportSchedule: getEnv("EXPORT_SCHEDULE", ""),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate rejects settings that are unsafe for production.
func (c Config) Validate() error {
	if c.Env != "prod" {
		return nil
	}
	var errs []error
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in prod"))
	}
	return errors.Join(errs...)
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DB returns the database connection options.
func (c Config) DB() db.Options {
	return db.Options{
		Host:         c.DBHost,
		Port:         c.DBPort,
		Name:         c.DBName,
		User:         c.DBUser,
		Password:     c.DBPass,
		MaxOpenConns: c.DBMaxOpenConns,
		MaxIdleConns: c.DBMaxIdleConns,
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
