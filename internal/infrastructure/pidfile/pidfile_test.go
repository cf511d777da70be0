package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/infrastructure/pidfile"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "fleetdeck.pid")
	p := pidfile.New(path)

	require.NoError(t, p.Acquire())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	require.NoError(t, p.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, p.Release(), "releasing twice is harmless")
}

func TestAcquire_ReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetdeck.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	assert.NoError(t, pidfile.New(path).Acquire())
}

func TestAcquire_LiveProcessRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetdeck.pid")
	// the parent of the test binary is alive for the duration of the test
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0644))

	err := pidfile.New(path).Acquire()

	assert.ErrorIs(t, err, pidfile.ErrAlreadyRunning)
}
