package logger

import (
	"os"
	"path/filepath"
	"testing"

	"tornbot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestNewInvalidLevel
func TestNewInvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

// go test -v --run TestNewWritesFile
func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tornbot.log")

	log, err := New(config.LogConfig{Level: "info", Format: "json", OutputFile: path, Environment: "prod"})
	require.NoError(t, err)

	log.Info("hello")
	_ = log.Sync() // stdout sync fails on pipes; the file core still flushes

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"env":"prod"`)
}

// go test -v --run TestRotatingFileDefaults
func TestRotatingFileDefaults(t *testing.T) {
	lj := rotatingFile(config.LogConfig{OutputFile: "x.log", MaxBackups: 2})
	assert.Equal(t, 10, lj.MaxSize)
	assert.Equal(t, 2, lj.MaxBackups)
	assert.Equal(t, 7, lj.MaxAge)
}
