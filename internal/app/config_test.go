package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, "server:\n  http-port: \":9100\"\n")

	cfg, realpath, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, p, realpath)
	assert.Equal(t, ":9100", cfg.Server.HttpPort)
	assert.Equal(t, 3, cfg.Attachment.MaxPerNote)
	assert.False(t, cfg.Attachment.StrictQuota)
	assert.Equal(t, "localfs", cfg.Storage.Type)
	assert.Equal(t, "redis", cfg.Queue.Type)
	assert.Equal(t, "attachment-zip-requests", cfg.Queue.ArchiveQueueName)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "X-Trace-ID", cfg.Tracer.Header)

	size, err := cfg.GetMaxUploadSize()
	require.NoError(t, err)
	assert.Equal(t, int64(20<<20), size)
}

func TestLoadConfigOverrides(t *testing.T) {
	p := writeConfig(t, `
attachment:
  max-per-note: 5
  strict-quota: true
  max-upload-size: 0
queue:
  type: memory
archive:
  location-prefix: https://files.example.com
app:
  write-queue-timeout: 5s
  write-queue-idle-time: 1d
`)

	cfg, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Attachment.MaxPerNote)
	assert.True(t, cfg.Attachment.StrictQuota)
	assert.Equal(t, "memory", cfg.Queue.Type)
	assert.Equal(t, "https://files.example.com", cfg.Archive.LocationPrefix)

	size, err := cfg.GetMaxUploadSize()
	require.NoError(t, err)
	assert.Zero(t, size)

	wq := cfg.GetWriteQueueConfig()
	assert.Equal(t, 5*time.Second, wq.WriteTimeout)
	assert.Equal(t, 24*time.Hour, wq.IdleTimeout)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"storage":  "storage:\n  type: ftp\n",
		"queue":    "queue:\n  type: kafka\n",
		"database": "database:\n  type: oracle\n",
		"size":     "attachment:\n  max-upload-size: lots\n",
		"negative": "attachment:\n  max-upload-size: -5MB\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	p := writeConfig(t, "attachment:\n  max-per-note: 7\n")
	cfg, _, err := LoadConfig(p)
	require.NoError(t, err)

	cfg.Archive.LocationPrefix = "https://cdn.example.com"
	require.NoError(t, cfg.Save())

	again, _, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Attachment.MaxPerNote)
	assert.Equal(t, "https://cdn.example.com", again.Archive.LocationPrefix)
}
