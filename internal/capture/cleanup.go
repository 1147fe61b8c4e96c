package capture

import (
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// DefaultCleanupDelay is how long a capture stays on disk after the response.
const DefaultCleanupDelay = 60 * time.Second

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d. time.AfterFunc satisfies it
// through afterFunc; tests substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Cleaner deletes capture files a fixed delay after they were produced.
//
// Scheduling never blocks. Deletion is idempotent: a file that is already gone
// is not an error. Pending deletions are tracked so Flush can run them on
// shutdown.
type Cleaner struct {
	delay  time.Duration
	after  AfterFunc
	logger zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingRemoval
}

type pendingRemoval struct {
	timer Timer
}

// NewCleaner returns a cleaner that deletes files delay after Schedule.
func NewCleaner(delay time.Duration, logger zerolog.Logger) *Cleaner {
	if delay <= 0 {
		delay = DefaultCleanupDelay
	}
	return &Cleaner{
		delay:   delay,
		after:   afterFunc,
		logger:  logger,
		pending: make(map[string]*pendingRemoval),
	}
}

// WithAfterFunc replaces the scheduler. Intended for tests.
func (c *Cleaner) WithAfterFunc(after AfterFunc) *Cleaner {
	c.after = after
	return c
}

// Delay returns the configured deletion delay.
func (c *Cleaner) Delay() time.Duration {
	return c.delay
}

// Schedule arranges for path to be deleted after the delay. Scheduling a path
// that is already pending restarts its countdown.
func (c *Cleaner) Schedule(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.pending[path]; ok {
		prev.timer.Stop()
	}
	p := &pendingRemoval{}
	p.timer = c.after(c.delay, func() { c.fire(path, p) })
	c.pending[path] = p

	c.logger.Debug().Str("path", path).Dur("delay", c.delay).Msg("cleanup scheduled")
}

// Pending reports how many deletions are outstanding.
func (c *Cleaner) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Flush cancels every outstanding timer and deletes the files now.
func (c *Cleaner) Flush() {
	c.mu.Lock()
	paths := make([]string, 0, len(c.pending))
	for path, p := range c.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	c.pending = make(map[string]*pendingRemoval)
	c.mu.Unlock()

	for _, path := range paths {
		c.remove(path)
	}
}

func (c *Cleaner) fire(path string, p *pendingRemoval) {
	c.mu.Lock()
	if c.pending[path] == p {
		delete(c.pending, path)
	}
	c.mu.Unlock()

	c.remove(path)
}

func (c *Cleaner) remove(path string) {
	if err := RemoveFile(path); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("cleanup failed")
		return
	}
	c.logger.Debug().Str("path", path).Msg("capture removed")
}

// RemoveFile deletes path, treating a missing file as success.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(err, "remove %s", path)
}
