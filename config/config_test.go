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

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "https://api.line.me", cfg.LineAPIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.LinePushTimeout)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "Asia/Bangkok", cfg.Location.String())
	assert.Equal(t, int64(64<<10), cfg.MaxBodyBytes)
	assert.False(t, cfg.PersistenceEnabled())
	assert.False(t, cfg.MonitoringEnabled())
	assert.False(t, cfg.ArchiveEnabled())
	assert.False(t, cfg.LIFFAuthEnabled())
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.line.me/oauth2/v2.1/certs", cfg.LIFFJWKSURL)
}

func TestFromEnv_MissingToken(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "  ")

	_, err := FromEnv()
	assert.True(t, errors.Is(err, ErrMissingChannelToken))
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SENTRY_DSN", "https://key@o1.ingest.sentry.io/1")
	t.Setenv("ALLOWED_ORIGINS", "https://liff.line.me, https://example.com ,")
	t.Setenv("RATE_LIMIT_MAX", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("LINE_API_BASE_URL", "http://localhost:9999/")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.PersistenceEnabled())
	assert.True(t, cfg.MonitoringEnabled())
	assert.Equal(t, []string{"https://liff.line.me", "https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "http://localhost:9999", cfg.LineAPIBaseURL)
}

func TestFromEnv_BadTimezone(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")
	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate_RequestTimeoutMustExceedPushTimeout(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLIFFAuthEnabled_ChannelIDOnly(t *testing.T) {
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")
	t.Setenv("LIFF_CHANNEL_ID", "1650000000")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.LIFFAuthEnabled())
	assert.Empty(t, cfg.LIFFChannelSecret)
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHANNEL_ACCESS_TOKEN", "token-123")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.DotEnvLoaded)
}

func TestLoad_WithDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CHANNEL_ACCESS_TOKEN=from-dotenv\nPORT=4000\n"), 0o600))
	t.Chdir(dir)

	// godotenv does not override variables that are already set.
	for _, key := range []string{"CHANNEL_ACCESS_TOKEN", "PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "from-dotenv", cfg.ChannelAccessToken)
	assert.Equal(t, "4000", cfg.Port)
}
