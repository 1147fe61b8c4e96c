package capture

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Stdout(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(5*time.Second, zerolog.Nop())

	out, err := r.Run(context.Background(), "sh", "-c", "echo 4242")
	require.NoError(t, err)
	assert.Equal(t, "4242\n", out)
}

func TestExecRunner_NonZeroExitCarriesStderr(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(5*time.Second, zerolog.Nop())

	_, err := r.Run(context.Background(), "sh", "-c", "echo 'could not create image' >&2; exit 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not create image")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(50*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, err := r.Run(context.Background(), "sh", "-c", "exec sleep 5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(time.Second, zerolog.Nop())

	_, err := r.Run(context.Background(), "definitely-not-a-real-screencapture")
	require.Error(t, err)
}
