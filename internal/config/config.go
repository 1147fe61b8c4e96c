// Package config resolves server settings from defaults, an optional .env
// file, SCREENSHOT_MCP_* environment variables and, last, CLI flags.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// EnvPrefix prefixes every environment variable the server reads.
const EnvPrefix = "SCREENSHOT_MCP_"

// Config holds every knob of the screenshot server.
type Config struct {
	LogLevel  string
	LogFormat string

	// TempDir receives capture files named ui-<unix seconds>.png.
	TempDir string

	// CleanupDelay is how long a capture survives after the response.
	CleanupDelay time.Duration

	// CommandTimeout bounds every screencapture and osascript call.
	CommandTimeout time.Duration

	Screencapture string
	Osascript     string

	// Clipboard enables best-effort copying of each capture to the clipboard.
	Clipboard bool

	HTTPAddr    string
	OCRLanguage string
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      "console",
		TempDir:        "/tmp",
		CleanupDelay:   60 * time.Second,
		CommandTimeout: 30 * time.Second,
		Screencapture:  "screencapture",
		Osascript:      "osascript",
		Clipboard:      true,
		HTTPAddr:       "127.0.0.1:8000",
		OCRLanguage:    "eng",
	}
}

type envMapping struct {
	key string
	set func(c *Config, val string) error
}

var envMappings = []envMapping{
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.LogFormat = v; return nil }},
	{"TEMP_DIR", func(c *Config, v string) error { c.TempDir = v; return nil }},
	{"CLEANUP_DELAY", func(c *Config, v string) error { return setDuration(&c.CleanupDelay, v) }},
	{"COMMAND_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.CommandTimeout, v) }},
	{"SCREENCAPTURE_BIN", func(c *Config, v string) error { c.Screencapture = v; return nil }},
	{"OSASCRIPT_BIN", func(c *Config, v string) error { c.Osascript = v; return nil }},
	{"CLIPBOARD", func(c *Config, v string) error { return setBool(&c.Clipboard, v) }},
	{"HTTP_ADDR", func(c *Config, v string) error { c.HTTPAddr = v; return nil }},
	{"OCR_LANGUAGE", func(c *Config, v string) error { c.OCRLanguage = v; return nil }},
}

// Load returns defaults overlaid with envFile (when given) or ./.env (when
// present), then with the process environment. An explicit envFile that
// cannot be read is an error.
func Load(envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return cfg, errors.Wrapf(err, "failed to load env file %s", envFile)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return cfg, errors.Wrap(err, "failed to load .env")
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overlays values found by lookup onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, m := range envMappings {
		val, ok := lookup(EnvPrefix + m.key)
		if !ok || strings.TrimSpace(val) == "" {
			continue
		}
		if err := m.set(c, strings.TrimSpace(val)); err != nil {
			return errors.Wrapf(err, "invalid %s%s", EnvPrefix, m.key)
		}
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		return errors.Newf("unsupported log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return errors.Newf("unsupported log format %q", c.LogFormat)
	}
	if strings.TrimSpace(c.TempDir) == "" {
		return errors.New("temp dir must not be empty")
	}
	if c.CleanupDelay <= 0 {
		return errors.Newf("cleanup delay must be positive, got %s", c.CleanupDelay)
	}
	if c.CommandTimeout <= 0 {
		return errors.Newf("command timeout must be positive, got %s", c.CommandTimeout)
	}
	if strings.TrimSpace(c.Screencapture) == "" || strings.TrimSpace(c.Osascript) == "" {
		return errors.New("screencapture and osascript binaries must be set")
	}
	return nil
}

// setDuration accepts Go durations ("90s") or bare seconds ("90").
func setDuration(dst *time.Duration, v string) error {
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
