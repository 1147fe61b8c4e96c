package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))
	return path
}

func TestNewCleaner_DefaultDelay(t *testing.T) {
	assert.Equal(t, 60*time.Second, NewCleaner(0, zerolog.Nop()).Delay())
	assert.Equal(t, 5*time.Second, NewCleaner(5*time.Second, zerolog.Nop()).Delay())
}

func TestCleaner_DeletesAfterDelay(t *testing.T) {
	timers := &manualTimers{}
	c := NewCleaner(DefaultCleanupDelay, zerolog.Nop()).WithAfterFunc(timers.after)
	path := touch(t, "ui-1.png")

	c.Schedule(path)
	assert.FileExists(t, path, "nothing happens before the delay elapses")
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, []time.Duration{DefaultCleanupDelay}, timers.delays)

	timers.elapse()
	assert.NoFileExists(t, path)
	assert.Zero(t, c.Pending())
}

func TestCleaner_MissingFileIsNotAnError(t *testing.T) {
	timers := &manualTimers{}
	c := NewCleaner(DefaultCleanupDelay, zerolog.Nop()).WithAfterFunc(timers.after)
	path := touch(t, "ui-2.png")

	c.Schedule(path)
	require.NoError(t, os.Remove(path))

	assert.NotPanics(t, timers.elapse)
	assert.Zero(t, c.Pending())
	assert.NoError(t, RemoveFile(filepath.Join(t.TempDir(), "never-existed.png")))
}

func TestCleaner_RescheduleRestartsCountdown(t *testing.T) {
	timers := &manualTimers{}
	c := NewCleaner(DefaultCleanupDelay, zerolog.Nop()).WithAfterFunc(timers.after)
	path := touch(t, "ui-3.png")

	c.Schedule(path)
	c.Schedule(path)
	assert.Equal(t, 1, c.Pending())
	assert.Len(t, timers.delays, 2)

	timers.elapse()
	assert.NoFileExists(t, path)
	assert.Zero(t, c.Pending())
}

func TestCleaner_Flush(t *testing.T) {
	timers := &manualTimers{}
	c := NewCleaner(DefaultCleanupDelay, zerolog.Nop()).WithAfterFunc(timers.after)
	a := touch(t, "ui-4.png")
	b := touch(t, "ui-5.png")

	c.Schedule(a)
	c.Schedule(b)
	c.Flush()

	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
	assert.Zero(t, c.Pending())

	// stopped timers must not resurrect anything
	assert.NotPanics(t, timers.elapse)
}

func TestCleaner_RealTimer(t *testing.T) {
	c := NewCleaner(20*time.Millisecond, zerolog.Nop())
	path := touch(t, "ui-6.png")

	c.Schedule(path)
	assert.FileExists(t, path)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return c.Pending() == 0 }, time.Second, 10*time.Millisecond)
}
