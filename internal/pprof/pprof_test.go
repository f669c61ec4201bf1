package pprof

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CPUProfile:   filepath.Join(dir, "cpu", "cpu.pprof"),
		HeapProfile:  filepath.Join(dir, "heap.pprof"),
		MutexProfile: filepath.Join(dir, "mutex.pprof"),
	}
	require.True(t, cfg.Enabled())

	p := New(cfg)
	require.NoError(t, p.Start())
	_ = strings.Repeat("spin", 1000)
	require.NoError(t, p.Stop())

	for _, path := range []string{cfg.CPUProfile, cfg.HeapProfile, cfg.MutexProfile} {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Greater(t, info.Size(), int64(0), path)
	}

	assert.NoError(t, p.Stop(), "second Stop is a no-op")
}

func TestProfilerDisabled(t *testing.T) {
	var cfg Config
	assert.False(t, cfg.Enabled())

	p := New(cfg)
	assert.NoError(t, p.Stop(), "Stop before Start")
	require.NoError(t, p.Start())
	assert.Error(t, p.Start())
	assert.NoError(t, p.Stop())
}

func TestProfilerBadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	p := New(Config{CPUProfile: filepath.Join(blocker, "cpu.pprof")})
	assert.Error(t, p.Start())
}
