package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevSessionSecret signs session tokens when no secret is configured. It is
// rejected in production.
const DevSessionSecret = "matprat-development-secret"

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort string
	ServerHost string
	StaticDir  string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration; optional
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Session configuration
	SessionSecret string
	SessionTTL    time.Duration

	// Image storage: "local" serves ImageDir under ImageURLPrefix, "s3" uses
	// S3Bucket in AWSRegion.
	ImageStorage   string
	ImageDir       string
	ImageURLPrefix string
	S3Bucket       string
	AWSRegion      string
	S3PublicURL    string
	UploadMaxBytes int64

	// Logging
	LogLevel     string
	LogFile      string
	LogErrorFile string
	LogJSON      bool

	CORSOrigins []string
}

// IsDevelopment reports whether raw error detail may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == Development
}

// LoadConfig reads .env files, environment variables and Docker secrets, in
// increasing order of precedence, and validates the result.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	cfg := fromViper(newViper(), GetEnvironment())
	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads each file that exists. Variables already present in the
// environment win.
func loadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("STATIC_DIR", "public")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "matprat")
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_TTL", "24h")

	v.SetDefault("IMAGE_STORAGE", "local")
	v.SetDefault("IMAGE_DIR", filepath.Join("public", "images"))
	v.SetDefault("IMAGE_URL_PREFIX", "/images")
	v.SetDefault("AWS_REGION", "eu-north-1")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)

	v.SetDefault("LOG_FILE", filepath.Join("logs", "combined.log"))
	v.SetDefault("LOG_ERROR_FILE", filepath.Join("logs", "error.log"))
	v.SetDefault("LOG_JSON", false)
	return v
}

func fromViper(v *viper.Viper, env Environment) *Config {
	cfg := &Config{
		Env:            env,
		ServerHost:     v.GetString("SERVER_HOST"),
		ServerPort:     v.GetString("SERVER_PORT"),
		StaticDir:      v.GetString("STATIC_DIR"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSL_MODE"),
		RedisURL:       v.GetString("REDIS_URL"),
		RedisHost:      v.GetString("REDIS_HOST"),
		RedisPort:      v.GetString("REDIS_PORT"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		ImageStorage:   strings.ToLower(v.GetString("IMAGE_STORAGE")),
		ImageDir:       v.GetString("IMAGE_DIR"),
		ImageURLPrefix: v.GetString("IMAGE_URL_PREFIX"),
		S3Bucket:       v.GetString("S3_BUCKET_NAME"),
		AWSRegion:      v.GetString("AWS_REGION"),
		S3PublicURL:    v.GetString("S3_PUBLIC_URL"),
		UploadMaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		LogErrorFile:   v.GetString("LOG_ERROR_FILE"),
		LogJSON:        v.GetBool("LOG_JSON"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
	}
	if cfg.SessionSecret == "" && env != Production {
		cfg.SessionSecret = DevSessionSecret
	}
	return cfg
}

// applySecrets lets Docker secrets override sensitive values.
func applySecrets(cfg *Config) {
	for name, dst := range map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
		"session_secret": &cfg.SessionSecret,
	} {
		if value := readSecret(name); value != "" {
			*dst = value
		}
	}
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
