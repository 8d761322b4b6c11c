package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("ARCHIVE_BACKEND", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("SUBMISSION_COOLDOWN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3*time.Second, cfg.Order.SubmissionCooldown)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_ADDR", "localhost:6379, localhost:6380")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ARCHIVE_BACKEND", "S3")
	t.Setenv("S3_BUCKET", "bills")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Log.File, "production always logs to file")
	assert.Equal(t, []string{"localhost:6379", "localhost:6380"}, cfg.Redis.Addrs)
	assert.True(t, cfg.Redis.Enabled())
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimitRPS, 0.0001)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "s3", cfg.Archive.Backend)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad int", "DB_MAX_OPEN_CONNS", "ten"},
		{"bad duration", "SUBMISSION_COOLDOWN", "3 seconds"},
		{"bad bool", "LOG_FILE", "maybe"},
		{"unknown archive backend", "ARCHIVE_BACKEND", "ftp"},
		{"drive without folder", "ARCHIVE_BACKEND", "drive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DRIVE_FOLDER_ID", "")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	dsn, err := DatabaseConfig{URL: "postgres://u:p@h/db"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", dsn)

	dsn, err = DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "db", SSLMode: "disable"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=db sslmode=disable", dsn)

	_, err = DatabaseConfig{Host: "h"}.DSN()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("ENV", "")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHOP_NAME=Dot Env Print\n"), 0o644))
	t.Setenv("SHOP_NAME", "from process")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "Dot Env Print", os.Getenv("SHOP_NAME"))
}
