package capture

import (
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Mode selects the capture strategy.
type Mode string

const (
	ModeFull    Mode = "full"
	ModeApp     Mode = "app"
	ModeWindow  Mode = "window"
	ModeDisplay Mode = "display"
)

// ToolName is the name both front ends publish the capture operation under.
const ToolName = "take_screenshot"

// ToolDescription is the published description of the capture operation.
const ToolDescription = "Captures a screenshot and returns the image file path. " +
	"Modes: 'full' for all displays, 'app' for app window by name, " +
	"'window' for window title (first match), 'display' for display number."

// Modes lists every supported mode in schema order.
var Modes = []Mode{ModeFull, ModeApp, ModeWindow, ModeDisplay}

// targetNames describes what Target means for each mode that needs one.
var targetNames = map[Mode]string{
	ModeApp:     "app name",
	ModeWindow:  "window title",
	ModeDisplay: "display number",
}

// Request is the single input shape shared by the MCP tool and the HTTP
// endpoint. Its tags drive both validation and the published JSON schema.
type Request struct {
	Mode Mode `json:"mode" validate:"required,oneof=full app window display" jsonschema:"enum=full,enum=app,enum=window,enum=display" jsonschema_description:"Screenshot capture mode"`

	Target string `json:"target,omitempty" validate:"required_unless=Mode full" jsonschema_description:"App name (for mode=app), window title (for mode=window), or display number (for mode=display). Not used for mode=full."`

	MaxWidth int `json:"max_width,omitempty" validate:"gte=0" jsonschema:"minimum=0" jsonschema_description:"Optional maximum width in pixels. Wider captures are downscaled, preserving aspect ratio. 0 keeps the native size."`
}

// Result describes a successful capture.
type Result struct {
	ImagePath         string    `json:"image_path"`
	Mode              Mode      `json:"mode"`
	Target            string    `json:"target,omitempty"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	CopiedToClipboard bool      `json:"copied_to_clipboard"`
	CapturedAt        time.Time `json:"captured_at"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalized trims the target. Mode is matched exactly.
func (r Request) normalized() Request {
	r.Target = strings.TrimSpace(r.Target)
	return r
}

// Validate checks mode and per-mode target requirements. Only the first
// violation is reported.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "validate request")
	}

	fe := verrs[0]
	switch fe.Field() {
	case "mode":
		if fe.Tag() == "required" {
			return missingField("missing required argument: mode")
		}
		return errors.Mark(errors.Newf("unknown mode: %s", r.Mode), ErrUnknownMode)
	case "target":
		return missingField("target (%s) required for '%s' mode", targetNames[r.Mode], r.Mode)
	case "max_width":
		return errors.Mark(errors.Newf("max_width must not be negative, got %d", r.MaxWidth), ErrInvalidArgument)
	default:
		return errors.Wrapf(err, "validate request field %s", fe.Field())
	}
}
