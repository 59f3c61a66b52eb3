package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port             string
	DatabaseURL      string
	SessionSecret    string
	JWTIssuer        string
	SessionTTL       time.Duration
	SessionUpdateAge time.Duration
	CookieSecure     bool
	CORSOrigins      []string
	LogLevel         string
	LogFormat        string
	DBConnectRetries uint64
}

// Load reads configuration from the environment and validates everything the server needs.
func Load() (Config, error) {
	cfg := read(newViper())
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	return cfg, nil
}

// LoadDatabase is Load for commands that only talk to Postgres, such as migrate.
func LoadDatabase() (Config, error) {
	cfg := read(newViper())
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("jwt_issuer", "santuario")
	v.SetDefault("session_ttl", 30*24*time.Hour)
	v.SetDefault("session_update_age", 24*time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("db_connect_retries", 5)
	return v
}

func read(v *viper.Viper) Config {
	secret := strings.TrimSpace(v.GetString("session_secret"))
	if secret == "" {
		// older deployments only set JWT_SECRET
		secret = strings.TrimSpace(v.GetString("jwt_secret"))
	}
	return Config{
		Port:             fallback(v.GetString("port"), "8080"),
		DatabaseURL:      strings.TrimSpace(v.GetString("database_url")),
		SessionSecret:    secret,
		JWTIssuer:        fallback(v.GetString("jwt_issuer"), "santuario"),
		SessionTTL:       v.GetDuration("session_ttl"),
		SessionUpdateAge: v.GetDuration("session_update_age"),
		CookieSecure:     v.GetBool("cookie_secure"),
		CORSOrigins:      parseCSV(v.GetString("cors_allowed_origins")),
		LogLevel:         fallback(v.GetString("log_level"), "info"),
		LogFormat:        fallback(v.GetString("log_format"), "json"),
		DBConnectRetries: v.GetUint64("db_connect_retries"),
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
