package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	internalApp "github.com/haierkeys/note-attachment-service/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunChecks(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	body := "database:\n  type: sqlite\n  path: " + filepath.Join(dir, "db.sqlite3") + "\n" +
		"storage:\n  type: localfs\n  save-path: " + filepath.Join(dir, "attachments") + "\n" +
		"queue:\n  type: redis\n  addr: " + mr.Addr() + "\n"
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))

	cfg, _, err := internalApp.LoadConfig(p)
	require.NoError(t, err)

	results := runChecks(context.Background(), cfg, zap.NewNop())
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.err, r.name)
	}

	mr.Close()
	results = runChecks(context.Background(), cfg, zap.NewNop())
	assert.NoError(t, results[0].err)
	assert.NoError(t, results[1].err)
	assert.Error(t, results[2].err)
}

func TestResolveConfigPathWritesDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	configDefault = "server:\n  http-port: \":9000\"\n"
	env := &runFlags{}
	require.NoError(t, resolveConfigPath(env))
	assert.Equal(t, "config/config.yaml", env.config)

	data, err := os.ReadFile(filepath.Join(dir, "config/config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, configDefault, string(data))

	// 已存在时直接使用
	env = &runFlags{}
	require.NoError(t, resolveConfigPath(env))
	assert.Equal(t, "config/config.yaml", env.config)
}
