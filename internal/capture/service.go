package capture

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/ironsheep/screenshot-mcp/internal/imaging"
)

// Options configure a Service. Zero values fall back to the macOS defaults.
type Options struct {
	// Runner executes external commands. Defaults to an ExecRunner without timeout.
	Runner CommandRunner

	// Screencapture is the capture utility binary. Default "screencapture".
	Screencapture string

	// Osascript is the scripting binary. Default "osascript".
	Osascript string

	// TempDir receives capture files. Default "/tmp".
	TempDir string

	// Clipboard enables copying each capture to the system clipboard.
	Clipboard bool

	// Cleaner deletes captures after a delay. Defaults to a 60s cleaner.
	Cleaner *Cleaner

	// Clock names capture files. Default time.Now.
	Clock func() time.Time

	Logger zerolog.Logger
}

// Service runs the validate, capture, clipboard and cleanup sequence shared
// by every front end. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	runner        CommandRunner
	screencapture string
	osascript     string
	tempDir       string
	clipboard     bool
	cleaner       *Cleaner
	clock         func() time.Time
	logger        zerolog.Logger
}

// NewService builds a Service from opts.
func NewService(opts Options) *Service {
	s := &Service{
		runner:        opts.Runner,
		screencapture: opts.Screencapture,
		osascript:     opts.Osascript,
		tempDir:       opts.TempDir,
		clipboard:     opts.Clipboard,
		cleaner:       opts.Cleaner,
		clock:         opts.Clock,
		logger:        opts.Logger,
	}
	if s.runner == nil {
		s.runner = NewExecRunner(0, opts.Logger)
	}
	if s.screencapture == "" {
		s.screencapture = "screencapture"
	}
	if s.osascript == "" {
		s.osascript = "osascript"
	}
	if s.tempDir == "" {
		s.tempDir = "/tmp"
	}
	if s.cleaner == nil {
		s.cleaner = NewCleaner(DefaultCleanupDelay, opts.Logger)
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Cleaner exposes the cleanup scheduler so servers can flush it on shutdown.
func (s *Service) Cleaner() *Cleaner {
	return s.cleaner
}

// PathFor returns the capture file path for a request made at t.
// Requests within the same second share a path.
func (s *Service) PathFor(t time.Time) string {
	return filepath.Join(s.tempDir, fmt.Sprintf("ui-%d.png", t.Unix()))
}

// Owns reports whether path names a capture file this service writes:
// ui-<n>.png directly inside the temp dir.
func (s *Service) Owns(path string) bool {
	clean := filepath.Clean(path)
	if filepath.Dir(clean) != filepath.Clean(s.tempDir) {
		return false
	}
	ok, _ := filepath.Match("ui-*.png", filepath.Base(clean))
	return ok
}

// Capture validates req, takes the screenshot, publishes it to the clipboard
// and schedules the file for deletion.
func (s *Service) Capture(ctx context.Context, req Request) (*Result, error) {
	req = req.normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	path := s.PathFor(now)
	log := s.logger.With().Str("mode", string(req.Mode)).Str("path", path).Logger()

	if err := s.dispatch(ctx, req, path); err != nil {
		log.Warn().Err(err).Str("kind", string(KindOf(err))).Msg("capture failed")
		return nil, err
	}

	info, err := imaging.FitWidth(path, req.MaxWidth)
	if err != nil {
		s.discard(path)
		err = captureFailure(err, "screenshot produced no readable image")
		log.Warn().Err(err).Msg("capture failed")
		return nil, err
	}

	res := &Result{
		ImagePath:  path,
		Mode:       req.Mode,
		Target:     req.Target,
		Width:      info.Width,
		Height:     info.Height,
		CapturedAt: now.UTC(),
	}

	if s.clipboard {
		if err := s.publish(ctx, path); err != nil {
			log.Warn().Err(err).Msg("clipboard publish failed")
		} else {
			res.CopiedToClipboard = true
		}
	}

	s.cleaner.Schedule(path)

	log.Info().
		Int("width", res.Width).
		Int("height", res.Height).
		Bool("clipboard", res.CopiedToClipboard).
		Msg("screenshot captured")
	return res, nil
}

func (s *Service) dispatch(ctx context.Context, req Request, path string) error {
	switch req.Mode {
	case ModeFull:
		return s.screenshot(ctx, path, "fullscreen")

	case ModeApp:
		id, err := s.appWindowID(ctx, req.Target)
		if err != nil {
			return err
		}
		return s.screenshot(ctx, path, fmt.Sprintf("window for app '%s'", req.Target), "-l"+strconv.Itoa(id))

	case ModeWindow:
		w, err := s.FindWindow(ctx, req.Target)
		if err != nil {
			return err
		}
		return s.screenshot(ctx, path, fmt.Sprintf("window with title '%s'", req.Target), "-l"+strconv.Itoa(w.ID))

	case ModeDisplay:
		n, err := strconv.Atoi(req.Target)
		if err != nil || n < 1 {
			return captureFailure(nil, "failed to capture display %s: display number must be a positive integer", req.Target)
		}
		return s.screenshot(ctx, path, "display "+req.Target, "-D"+strconv.Itoa(n))

	default:
		return errors.Mark(errors.Newf("unknown mode: %s", req.Mode), ErrUnknownMode)
	}
}

// screenshot runs the capture utility silently with extra selector flags.
// Whatever a failed run left at path is removed; failures before this point
// never touch path, which another request in the same second may own.
func (s *Service) screenshot(ctx context.Context, path, what string, flags ...string) error {
	args := append([]string{"-x"}, flags...)
	args = append(args, path)
	if _, err := s.runner.Run(ctx, s.screencapture, args...); err != nil {
		s.discard(path)
		return captureFailure(err, "failed to capture %s", what)
	}
	return nil
}

// publish places the PNG at path on the system clipboard.
func (s *Service) publish(ctx context.Context, path string) error {
	script := fmt.Sprintf(`set the clipboard to (read (POSIX file "%s") as «class PNGf»)`, appleScriptEscape(path))
	if _, err := s.runner.Run(ctx, s.osascript, "-e", script); err != nil {
		return errors.Mark(errors.Wrap(err, "failed to copy screenshot to clipboard"), ErrClipboardFailure)
	}
	return nil
}

// discard removes a partial capture left behind by a failed request.
func (s *Service) discard(path string) {
	if err := RemoveFile(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to discard partial capture")
	}
}
