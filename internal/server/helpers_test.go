package server

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
)

var fixedNow = time.Unix(1700000000, 0)

// newTestServer returns a server whose capture service runs against runner
// and writes into a per-test temp dir.
func newTestServer(t *testing.T, runner *capture.FakeRunner) (*Server, *capture.Service) {
	t.Helper()
	svc := capture.NewService(capture.Options{
		Runner:    runner,
		TempDir:   t.TempDir(),
		Clipboard: true,
		Clock:     func() time.Time { return fixedNow },
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(svc.Cleaner().Flush)
	return New(svc, Options{Version: "1.2.3", Logger: zerolog.Nop()}), svc
}
