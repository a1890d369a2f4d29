package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsh/wercrash/internal/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestNewDiscardByDefault(t *testing.T) {
	logger, closer, err := New(config.Default().Logging, t.TempDir())
	require.NoError(t, err)
	defer closer.Close()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestDiscardDisabledAtEveryLevel(t *testing.T) {
	logger := Discard()
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, logger.Enabled(t.Context(), level), level.String())
	}
}

func TestNewFileOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.LoggingConfig{Level: "warn", Format: "json", Output: filepath.Join("logs", "wercrash.log")}

	logger, closer, err := New(cfg, dir)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("minidump written", "pid", 42)
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(filepath.Join(dir, "logs", "wercrash.log"))
	require.NoError(t, err)
	out := string(b)
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"minidump written"`)
	assert.Contains(t, out, `"pid":42`)
}

func TestNewTruncatesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "w.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o644))

	logger, closer, err := New(config.LoggingConfig{Level: "info", Output: path, MaxSize: 32}, "")
	require.NoError(t, err)
	logger.Info("fresh")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "xxxx")
	assert.Contains(t, string(b), "msg=fresh")
}

func TestNewAppendsBelowLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.log")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o644))

	logger, closer, err := New(config.LoggingConfig{Output: path, MaxSize: 1 << 20}, "")
	require.NoError(t, err)
	logger.Info("next")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "previous\n"))
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Level: "noisy", Output: "stderr"}, "")
	assert.Error(t, err)

	_, _, err = New(config.LoggingConfig{Format: "xml", Output: filepath.Join(t.TempDir(), "a.log")}, "")
	assert.Error(t, err)
}
