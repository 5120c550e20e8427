package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arborfs/flushnode/config"
)

const sampleYAML = `
policy:
  max_memory_gain: 1000000
  global_max_memory: 5000000
  total_disk_bloat_factor: 1.0
  max_global_tls_size: 1073741824
  disk_bloat_factor: 0.3
  max_time_gain: 45s
interval: 15s
listen_addr: ":9191"
worker_limit: 8
`

func TestLoadDecodesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flushnoded.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, uint64(1_000_000), cfg.Policy.MaxMemoryGain)
	require.Equal(t, 0.3, cfg.Policy.DiskBloatFactor)
	require.Equal(t, 45*time.Second, cfg.Policy.MaxTimeGain.Duration())
	require.Equal(t, 15*time.Second, cfg.Interval.Duration())
	require.Equal(t, ":9191", cfg.ListenAddr)
	require.Equal(t, 8, cfg.WorkerLimit)

	policyCfg := cfg.Policy.ToPolicy()
	require.Equal(t, uint64(1_000_000), policyCfg.MaxMemoryGain)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/flushnoded.yaml")
	require.Error(t, err)
}

func TestDefaultsApplyWhenFieldsUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  max_memory_gain: 1\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9091", cfg.ListenAddr)
	require.Equal(t, 4, cfg.WorkerLimit)
}
