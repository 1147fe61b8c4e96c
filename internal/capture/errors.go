package capture

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by Service is marked with exactly one of
// these, so callers classify with errors.Is or KindOf.
var (
	// ErrMissingField marks requests that omit mode or a mode-required target.
	ErrMissingField = errors.New("missing field")

	// ErrUnknownMode marks requests whose mode is not full, app, window or display.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrInvalidArgument marks requests with a present but unusable optional field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResolutionFailure marks app or window lookups that found nothing.
	ErrResolutionFailure = errors.New("resolution failure")

	// ErrCaptureFailure marks a capture utility that failed or produced no image.
	ErrCaptureFailure = errors.New("capture failure")

	// ErrClipboardFailure marks a failed clipboard publish. Service logs and
	// swallows these; they never reach a front end.
	ErrClipboardFailure = errors.New("clipboard failure")
)

// Kind names an error kind for logs and wire responses.
type Kind string

const (
	KindNone              Kind = ""
	KindMissingField      Kind = "missing_field"
	KindUnknownMode       Kind = "unknown_mode"
	KindInvalidArgument   Kind = "invalid_argument"
	KindResolutionFailure Kind = "resolution_failure"
	KindCaptureFailure    Kind = "capture_failure"
	KindClipboardFailure  Kind = "clipboard_failure"
	KindInternal          Kind = "internal"
)

var kinds = []struct {
	mark error
	kind Kind
}{
	{ErrMissingField, KindMissingField},
	{ErrUnknownMode, KindUnknownMode},
	{ErrInvalidArgument, KindInvalidArgument},
	{ErrResolutionFailure, KindResolutionFailure},
	{ErrCaptureFailure, KindCaptureFailure},
	{ErrClipboardFailure, KindClipboardFailure},
}

// KindOf classifies err. Unmarked errors are KindInternal; nil is KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.mark) {
			return k.kind
		}
	}
	return KindInternal
}

func missingField(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrMissingField)
}

func resolutionFailure(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Mark(errors.Newf(format, args...), ErrResolutionFailure)
	}
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrResolutionFailure)
}

func captureFailure(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Mark(errors.Newf(format, args...), ErrCaptureFailure)
	}
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrCaptureFailure)
}
