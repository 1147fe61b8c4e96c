package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/config"
	"github.com/ironsheep/screenshot-mcp/internal/httpapi"
	"github.com/ironsheep/screenshot-mcp/internal/logging"
	"github.com/ironsheep/screenshot-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type options struct {
	envFile        string
	logLevel       string
	logFormat      string
	tempDir        string
	cleanupDelay   time.Duration
	commandTimeout time.Duration
	clipboard      bool
	ocrLanguage    string
	addr           string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "screenshot-mcp",
		Short: "MCP server for macOS screenshots",
		Long: `screenshot-mcp captures the screen, an app window, a titled window or a
single display with screencapture, copies the image to the clipboard and
returns its path. Captures are deleted after a delay.

Without a subcommand it speaks MCP over stdin/stdout. Settings come from
defaults, an optional .env file, SCREENSHOT_MCP_* environment variables and
flags, later sources winning.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runStdio(cmd.Context(), cfg, logger)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", "", "load settings from this env file instead of ./.env")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (console or json)")
	pf.StringVar(&opts.tempDir, "temp-dir", "", "directory receiving ui-<unix>.png captures")
	pf.DurationVar(&opts.cleanupDelay, "cleanup-delay", 0, "delete captures after this long")
	pf.DurationVar(&opts.commandTimeout, "command-timeout", 0, "timeout for each screencapture/osascript call")
	pf.BoolVar(&opts.clipboard, "clipboard", true, "copy each capture to the clipboard")
	pf.StringVar(&opts.ocrLanguage, "ocr-language", "", "default Tesseract language for screenshot_text")

	httpCmd := &cobra.Command{
		Use:   "http",
		Short: "Serve GET /describe and POST /run over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return runHTTP(cmd.Context(), cfg, logger)
		},
	}
	httpCmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default 127.0.0.1:8000)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "screenshot-mcp %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}

	root.AddCommand(httpCmd, newWindowsCmd(opts), versionCmd)
	return root
}

// setup resolves the configuration and builds the logger.
func setup(cmd *cobra.Command, opts *options) (config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	logger = logger.With().Str("service", "screenshot-mcp").Logger()
	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Msg("starting")
	return cfg, logger, nil
}

// loadConfig applies explicitly set flags on top of config.Load.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = opts.tempDir
	}
	if flags.Changed("cleanup-delay") {
		cfg.CleanupDelay = opts.cleanupDelay
	}
	if flags.Changed("command-timeout") {
		cfg.CommandTimeout = opts.commandTimeout
	}
	if flags.Changed("clipboard") {
		cfg.Clipboard = opts.clipboard
	}
	if flags.Changed("ocr-language") {
		cfg.OCRLanguage = opts.ocrLanguage
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		cfg.HTTPAddr = opts.addr
	}
	return cfg, cfg.Validate()
}

func newService(cfg config.Config, logger zerolog.Logger) *capture.Service {
	return capture.NewService(capture.Options{
		Runner:        capture.NewExecRunner(cfg.CommandTimeout, logger),
		Screencapture: cfg.Screencapture,
		Osascript:     cfg.Osascript,
		TempDir:       cfg.TempDir,
		Clipboard:     cfg.Clipboard,
		Cleaner:       capture.NewCleaner(cfg.CleanupDelay, logger),
		Logger:        logger,
	})
}

func runStdio(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	svc := newService(cfg, logger)
	defer svc.Cleaner().Flush()

	srv := server.New(svc, server.Options{
		Version:     Version,
		OCRLanguage: cfg.OCRLanguage,
		Logger:      logger,
	})

	// Reads from stdin cannot be interrupted, so a signal ends the process
	// without waiting for Run.
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, os.Stdin, os.Stdout) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return nil
	}
}

func runHTTP(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	svc := newService(cfg, logger)
	defer svc.Cleaner().Flush()

	err := httpapi.ListenAndServe(ctx, cfg.HTTPAddr, httpapi.New(svc, logger), logger)
	if err != nil {
		logger.Error().Err(err).Msg("server error")
	}
	return err
}
