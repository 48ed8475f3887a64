package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	lg, err := NewLogger(Config{Level: "info", File: file, Production: true})
	require.NoError(t, err)

	lg.Info("hello")
	_ = lg.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}
