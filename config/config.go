package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Media backends understood by the image store factory.
const (
	MediaLocal = "local"
	MediaS3    = "s3"
)

// Database drivers understood by database.Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string `validate:"required,numeric"`
	ServerHost string

	// Database configuration
	DBDriver   string `validate:"oneof=postgres sqlite"`
	DBHost     string `validate:"required_if=DBDriver postgres"`
	DBPort     string `validate:"required_if=DBDriver postgres"`
	DBUser     string `validate:"required_if=DBDriver postgres"`
	DBPassword string
	DBName     string `validate:"required_if=DBDriver postgres"`
	DBSSLMode  string
	SQLitePath string `validate:"required_if=DBDriver sqlite"`

	// Redis configuration. Empty RedisURL and RedisHost disable Redis.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string        `validate:"required,min=8"`
	TokenTTL  time.Duration `validate:"gt=0"`

	// Media storage
	MediaBackend string `validate:"oneof=local s3"`
	MediaRoot    string `validate:"required_if=MediaBackend local"`
	MediaURL     string
	S3Bucket     string `validate:"required_if=MediaBackend s3"`
	S3Region     string
	// S3PresignTTL > 0 serves images through presigned GET URLs (private bucket).
	S3PresignTTL time.Duration `validate:"gte=0"`

	// HTTP surface
	CORSOrigins []string
	LogLevel    string `validate:"oneof=trace debug info warn error"`

	// RecipeCreateLimit is the number of recipes a user may create per hour. Zero disables it.
	RecipeCreateLimit int `validate:"gte=0"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development {
		// A missing .env file is fine; plain environment variables still apply.
		_ = godotenv.Load()
	}

	cfg := &Config{Env: env}
	if err := load(cfg, env); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config, env Environment) error {
	cfg.ServerPort = getEnv("SERVER_PORT", "8000")
	cfg.ServerHost = getEnv("SERVER_HOST", "")

	cfg.DBDriver = getEnv("DB_DRIVER", DriverPostgres)
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = secretOrEnv(env, "db_user", "DB_USER", "postgres")
	cfg.DBPassword = secretOrEnv(env, "db_password", "DB_PASSWORD", "")
	cfg.DBName = getEnv("DB_NAME", "foodgram")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "foodgram.db")

	cfg.RedisURL = secretOrEnv(env, "redis_url", "REDIS_URL", "")
	cfg.RedisHost = getEnv("REDIS_HOST", "")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisPassword = secretOrEnv(env, "redis_password", "REDIS_PASSWORD", "")
	cfg.RedisDB = 0 // This is a constant, not a secret

	cfg.JWTSecret = secretOrEnv(env, "jwt_secret", "JWT_SECRET", "")
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return fmt.Errorf("TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	cfg.MediaBackend = getEnv("MEDIA_BACKEND", MediaLocal)
	cfg.MediaRoot = getEnv("MEDIA_ROOT", "media")
	cfg.MediaURL = strings.TrimRight(getEnv("MEDIA_URL", "/media"), "/")
	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", "")
	cfg.S3Region = getEnv("AWS_REGION", "")
	presign, err := time.ParseDuration(getEnv("S3_PRESIGN_TTL", "0s"))
	if err != nil {
		return fmt.Errorf("S3_PRESIGN_TTL: %w", err)
	}
	cfg.S3PresignTTL = presign

	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))

	limit, err := strconv.Atoi(getEnv("RECIPE_CREATE_LIMIT", "20"))
	if err != nil {
		return fmt.Errorf("RECIPE_CREATE_LIMIT: %w", err)
	}
	cfg.RecipeCreateLimit = limit

	return nil
}

// secretOrEnv reads a Docker secret in production and falls back to the environment.
func secretOrEnv(env Environment, secret, key, def string) string {
	if env == Production {
		if v := readSecret(secret); v != "" {
			return v
		}
	}
	return getEnv(key, def)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
