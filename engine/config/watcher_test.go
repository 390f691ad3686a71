package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("msaa = 1\n"), 0o644))

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("msaa = 4\nhdr = true\n"), 0o644))

	assert.Eventually(t, func() bool {
		return w.Current().MSAASamples == 4
	}, 5*time.Second, 10*time.Millisecond)
	assert.True(t, w.Current().HDR)
}

func TestWatcherCloseWithoutStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("msaa = 1\n"), 0o644))

	initial, err := Load(path)
	require.NoError(t, err)

	// Without a running goroutine, Close itself must release the fs watcher.
	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.Error(t, w.Close(), "double close is refused")
	assert.Error(t, w.Start(), "a closed watcher never starts")
}

func TestWatcherKeepsPreviousConfigOnInvalidEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("msaa = 2\n"), 0o644))

	initial, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	// An edit that fails validation must never reach the renderer.
	require.NoError(t, os.WriteFile(path, []byte("msaa = 7\n"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, uint8(2), w.Current().MSAASamples)
}
