package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// OAuthCredentials holds the client credentials for one external provider.
// A provider with an empty ClientID is considered disabled.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	// BaseURL is the externally visible address of this API, used to build
	// OAuth callback URLs and password-reset links.
	BaseURL     string
	FrontendURL string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisURL string

	JWTSecret string
	JWTTTL    time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	OAuth map[string]OAuthCredentials
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),

		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "hackathon_portal"),
		DBPort: getEnv("DB_PORT", "5432"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		SMTPHost: getEnv("EMAIL_HOST", "localhost"),
		SMTPUser: os.Getenv("EMAIL_USER"),
		SMTPPass: os.Getenv("EMAIL_PASS"),
		MailFrom: getEnv("EMAIL_FROM", "Hackathon Portal <no-reply@campushack.io>"),
	}

	smtpPort, err := strconv.Atoi(getEnv("EMAIL_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}
	cfg.SMTPPort = smtpPort

	// Sessions live for 7 days unless overridden.
	cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	cfg.OAuth = map[string]OAuthCredentials{
		"google":    oauthFromEnv("GOOGLE"),
		"github":    oauthFromEnv("GITHUB"),
		"microsoft": oauthFromEnv("MICROSOFT"),
		"facebook":  oauthFromEnv("FACEBOOK"),
		"spotify":   oauthFromEnv("SPOTIFY"),
	}

	return cfg, nil
}

func oauthFromEnv(prefix string) OAuthCredentials {
	return OAuthCredentials{
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
