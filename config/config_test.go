package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at an empty secrets dir and working directory.
func isolate(t *testing.T) string {
	t.Helper()
	secrets := t.TempDir()
	t.Setenv("SECRETS_DIR", secrets)
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })
	return secrets
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, "3000", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "matprat", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, DevSessionSecret, cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "local", cfg.ImageStorage)
	assert.Equal(t, "/images", cfg.ImageURLPrefix)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.Empty(t, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("IMAGE_STORAGE", "S3")
	t.Setenv("S3_BUCKET_NAME", "matprat-images")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_JSON", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "from-env", cfg.DBPassword)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "s3", cfg.ImageStorage)
	assert.Equal(t, "matprat-images", cfg.S3Bucket)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.LogJSON)
}

func TestSecretsOverrideEnvironment(t *testing.T) {
	secrets := isolate(t)
	t.Setenv("DB_PASSWORD", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "db_password"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(secrets, "session_secret"), []byte("s3cr3t"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.DBPassword)
	assert.Equal(t, "s3cr3t", cfg.SessionSecret)
}

func TestDotEnvFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("DB_NAME=from_dotenv\nREDIS_HOST=cache\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DB_NAME")
		os.Unsetenv("REDIS_HOST")
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from_dotenv", cfg.DBName)
	assert.Equal(t, "cache", cfg.RedisHost)
}

func TestProductionValidation(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"SESSION_SECRET", "DB_PASSWORD"}, fields)

	t.Setenv("SESSION_SECRET", "prod-secret")
	t.Setenv("DB_PASSWORD", "prod-password")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Env)
}

func TestValidateConfigStorage(t *testing.T) {
	cfg := &Config{ImageStorage: "ftp", UploadMaxBytes: 1, SessionTTL: time.Hour}
	assert.Error(t, ValidateConfig(cfg))

	cfg.ImageStorage = "s3"
	assert.Error(t, ValidateConfig(cfg))

	cfg.S3Bucket = "bucket"
	assert.NoError(t, ValidateConfig(cfg))
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Production, ParseEnvironment(" PROD "))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("staging"))
}
