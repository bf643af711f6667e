package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcdb/arcdb/internal/bufferpool"
	"github.com/arcdb/arcdb/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  table_file: data.db\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.BufferPool.Frames)
	strategy, err := cfg.BufferPoolStrategy()
	require.NoError(t, err)
	require.Equal(t, bufferpool.CLOCK, strategy)
	require.Equal(t, 64, cfg.Index.Fanout)
	require.Equal(t, "data.db.idx", cfg.Storage.IndexFile)
}

func TestLoadRejectsMissingTableFile(t *testing.T) {
	path := writeConfig(t, "buffer_pool:\n  frames: 4\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	path := writeConfig(t, "storage:\n  table_file: data.db\nbuffer_pool:\n  strategy: RANDOM\n")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadParsesExplicitStrategy(t *testing.T) {
	path := writeConfig(t, "storage:\n  table_file: data.db\nbuffer_pool:\n  strategy: lru\n  frames: 10\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	strategy, err := cfg.BufferPoolStrategy()
	require.NoError(t, err)
	require.Equal(t, bufferpool.LRU, strategy)
}
