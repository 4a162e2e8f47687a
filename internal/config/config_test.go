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

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MONGO_URI", "MONGODB_URI", "MONGO_DATABASE", "COMMENT_ID", "QUERY_RATE", "CONNECT_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresURI(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.True(t, errors.Is(err, ErrMissingURI))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017/mflix")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/mflix", cfg.MongoURI)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.CommentID)
	assert.Zero(t, cfg.QueryRate)
}

func TestLoadFallsBackToMongoDBURI(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("COMMENT_ID", "5a9427648b0beebeb69579e7")
	t.Setenv("QUERY_RATE", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "5a9427648b0beebeb69579e7", cfg.CommentID)
	assert.InDelta(t, 2.5, cfg.QueryRate, 1e-9)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost")

	t.Setenv("QUERY_RATE", "-1")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("QUERY_RATE", "")
	t.Setenv("CONNECT_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("MONGO_URI")
	os.Unsetenv("COMMENT_ID")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_URI=mongodb://from-file:27017\nCOMMENT_ID=abc\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	t.Cleanup(func() {
		os.Unsetenv("MONGO_URI")
		os.Unsetenv("COMMENT_ID")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://from-file:27017", cfg.MongoURI)
	assert.Equal(t, "abc", cfg.CommentID)
}

func TestLoadEnvFileMissingExplicitPath(t *testing.T) {
	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLogLevel(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "info", LogLevel(""))

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, "warn", LogLevel(""))
	assert.Equal(t, "debug", LogLevel("debug"))

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
