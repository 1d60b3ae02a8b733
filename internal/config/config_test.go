package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ALLOWED_ORIGINS", "SHUTDOWN_TIMEOUT",
	"GEMINI_API_KEY", "API_KEY", "GEMINI_BASE_URL",
	"POLL_INTERVAL", "MAX_WAIT", "DOWNLOAD_TIMEOUT", "MAX_DOWNLOAD_BYTES",
	"TEMP_DIR",
	"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PREFIX",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"MEDIA_PROBE", "FFMPEG_PATH", "FFPROBE_PATH",
	"LOG_FORMAT", "LOG_LEVEL",
}

// clearEnv unsets every configuration variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "") // registers restoration of the original value
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.APIKey())
	assert.Equal(t, 8*time.Second, cfg.PollInterval)
	assert.Zero(t, cfg.MaxWait)
	assert.Equal(t, 5*time.Minute, cfg.DownloadTimeout)
	assert.Equal(t, int64(512<<20), cfg.MaxDownloadBytes)
	assert.Equal(t, "/tmp/veo-studio", cfg.TempDir)
	assert.False(t, cfg.MediaProbe)
	assert.False(t, cfg.S3Enabled())
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "3000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("MAX_WAIT", "10m")
	t.Setenv("DOWNLOAD_TIMEOUT", "90s")
	t.Setenv("TEMP_DIR", "/custom/temp")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:4566")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("MEDIA_PROBE", "true")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "gemini-key", cfg.APIKey())
	assert.Equal(t, "http://localhost:9999", cfg.GeminiBaseURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.MaxWait)
	assert.Equal(t, 90*time.Second, cfg.DownloadTimeout)
	assert.Equal(t, "/custom/temp", cfg.TempDir)
	assert.True(t, cfg.S3Enabled())
	assert.Equal(t, "http://localhost:4566", cfg.S3Endpoint)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.True(t, cfg.MediaProbe)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{name: "port not a number", key: "PORT", value: "not-a-number"},
		{name: "port out of range", key: "PORT", value: "70000", wantErr: ErrInvalidPort},
		{name: "poll interval unparsable", key: "POLL_INTERVAL", value: "soon"},
		{name: "poll interval zero", key: "POLL_INTERVAL", value: "0s", wantErr: ErrInvalidPollInterval},
		{name: "max wait negative", key: "MAX_WAIT", value: "-1m", wantErr: ErrInvalidMaxWait},
		{name: "download timeout zero", key: "DOWNLOAD_TIMEOUT", value: "0s", wantErr: ErrInvalidDownloadTimeout},
		{name: "bucket without region", key: "S3_BUCKET", value: "bucket", wantErr: ErrS3RegionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("GEMINI_API_KEY=from-dotenv\nPORT=9000\nLOG_LEVEL=warn\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"),
		[]byte("GEMINI_API_KEY=from-local\n"), 0600))
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-local", cfg.APIKey(), ".env.local wins over .env")
	assert.Equal(t, 9000, cfg.Port, ".env fills unset variables")
	assert.Equal(t, "error", cfg.LogLevel, "process environment wins over files")
}

func TestLoad_MalformedEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BROKEN='unterminated\n"), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestConfig_APIKey(t *testing.T) {
	tests := []struct {
		name   string
		gemini string
		legacy string
		want   string
	}{
		{"gemini only", "g", "", "g"},
		{"legacy only", "", "l", "l"},
		{"both prefers gemini", "g", "l", "g"},
		{"neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{GeminiAPIKey: tt.gemini, LegacyAPIKey: tt.legacy}
			assert.Equal(t, tt.want, cfg.APIKey())
		})
	}
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		GeminiAPIKey:       "gemini-secret",
		PollInterval:       8 * time.Second,
		TempDir:            "/tmp/test",
		S3Bucket:           "bucket",
		S3Region:           "region",
		AWSAccessKeyID:     "access-secret",
		AWSSecretAccessKey: "aws-secret",
		LogFormat:          "json",
		LogLevel:           "info",
	}

	str := cfg.String()

	// Should contain non-sensitive values
	assert.Contains(t, str, "8080")
	assert.Contains(t, str, "8s")
	assert.Contains(t, str, "/tmp/test")
	assert.Contains(t, str, "bucket")

	// Should NOT contain sensitive values
	assert.NotContains(t, str, "gemini-secret")
	assert.NotContains(t, str, "access-secret")
	assert.NotContains(t, str, "aws-secret")
	assert.Contains(t, str, "GeminiAPIKey: ****")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:            8080,
			PollInterval:    8 * time.Second,
			DownloadTimeout: time.Minute,
		}
	}

	t.Run("valid config without key", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("zero max wait is unbounded", func(t *testing.T) {
		cfg := valid()
		cfg.MaxWait = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("negative poll interval", func(t *testing.T) {
		cfg := valid()
		cfg.PollInterval = -time.Second
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidPollInterval)
	})
}

func TestConfig_NewLogger_JSON(t *testing.T) {
	cfg := &Config{
		LogFormat: "json",
		LogLevel:  "info",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
	_, isJSON := logger.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)

	var buf bytes.Buffer
	slog.New(slog.NewJSONHandler(&buf, nil)).Info("test message")
	assert.Contains(t, buf.String(), `"msg"`)
}

func TestConfig_NewLogger_Text(t *testing.T) {
	cfg := &Config{
		LogFormat: "text",
		LogLevel:  "debug",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	_, isText := logger.Handler().(*slog.TextHandler)
	assert.True(t, isText)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}
