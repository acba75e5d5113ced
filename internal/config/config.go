package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OAuthProviderConfig holds the client credentials for one external
// identity provider. A provider is enabled iff ClientID and ClientSecret
// are both present.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (c OAuthProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Token secrets are distinct per token family so compromise of one
	// does not unlock the other.
	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	// Refresh lifetime differs between the password-login path and the
	// OAuth callback path; both are tunable.
	JWTRefreshExpiry   time.Duration
	OAuthRefreshExpiry time.Duration

	// HTTP sessions
	SessionCookieName string
	SessionExpiry     time.Duration

	// Redis session storage (fiber falls back to in-memory when unset)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OAuth providers
	OAuthStateSecret string
	Google           OAuthProviderConfig
	Facebook         OAuthProviderConfig
	GitHub           OAuthProviderConfig

	// Seed
	SeedDatabase  bool
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "auth_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		JWTRefreshSecret:   getEnv("JWT_REFRESH_SECRET", ""),
		JWTAccessExpiry:    parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry:   parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),
		OAuthRefreshExpiry: parseDuration(getEnv("OAUTH_REFRESH_EXPIRY", "720h"), 720*time.Hour),

		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "auth_session"),
		SessionExpiry:     parseDuration(getEnv("SESSION_EXPIRY", "24h"), 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		OAuthStateSecret: getEnv("OAUTH_STATE_SECRET", ""),
		Google: OAuthProviderConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_CALLBACK_URL", ""),
		},
		Facebook: OAuthProviderConfig{
			ClientID:     getEnv("FACEBOOK_APP_ID", ""),
			ClientSecret: getEnv("FACEBOOK_APP_SECRET", ""),
			RedirectURL:  getEnv("FACEBOOK_CALLBACK_URL", ""),
		},
		GitHub: OAuthProviderConfig{
			ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
			ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		},

		SeedDatabase:  getEnv("SEED_DATABASE", "false") == "true",
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
