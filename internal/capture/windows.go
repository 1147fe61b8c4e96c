package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Window is an on-screen window as reported by CoreGraphics.
type Window struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Owner string `json:"owner"`
}

// listWindowsScript asks CoreGraphics for on-screen windows and prints them
// as a JSON array. osascript prints the value of the last expression.
const listWindowsScript = `ObjC.import('CoreGraphics');
var info = ObjC.castRefToObject($.CGWindowListCopyWindowInfo($.kCGWindowListOptionOnScreenOnly, $.kCGNullWindowID));
var out = [];
for (var i = 0; i < info.count; i++) {
  var w = info.objectAtIndex(i);
  var title = w.objectForKey('kCGWindowName');
  var owner = w.objectForKey('kCGWindowOwnerName');
  out.push({
    id: ObjC.unwrap(w.objectForKey('kCGWindowNumber')),
    title: title ? ObjC.unwrap(title) : '',
    owner: owner ? ObjC.unwrap(owner) : ''
  });
}
JSON.stringify(out);`

// ListWindows enumerates on-screen windows in front-to-back order.
func (s *Service) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := s.runner.Run(ctx, s.osascript, "-l", "JavaScript", "-e", listWindowsScript)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list windows")
	}

	var windows []Window
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &windows); err != nil {
		return nil, errors.Wrap(err, "failed to parse window list")
	}
	return windows, nil
}

// FindWindow returns the first on-screen window whose title contains title,
// ignoring case.
func (s *Service) FindWindow(ctx context.Context, title string) (Window, error) {
	windows, err := s.ListWindows(ctx)
	if err != nil {
		return Window{}, resolutionFailure(err, "no window found with title matching '%s'", title)
	}

	needle := strings.ToLower(title)
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			return w, nil
		}
	}
	return Window{}, resolutionFailure(nil, "no window found with title matching '%s'", title)
}

// FilterWindows keeps windows whose title or owner contains filter, ignoring case.
// An empty filter keeps everything.
func FilterWindows(windows []Window, filter string) []Window {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return windows
	}
	matched := make([]Window, 0, len(windows))
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), needle) ||
			strings.Contains(strings.ToLower(w.Owner), needle) {
			matched = append(matched, w)
		}
	}
	return matched
}

// appWindowID resolves the id of the first window owned by the named process.
func (s *Service) appWindowID(ctx context.Context, app string) (int, error) {
	script := fmt.Sprintf(`tell application "System Events" to get the id of the first window of process "%s"`,
		appleScriptEscape(app))

	out, err := s.runner.Run(ctx, s.osascript, "-e", script)
	if err != nil {
		return 0, resolutionFailure(err, "could not find window for app '%s'", app)
	}

	id, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || id <= 0 {
		return 0, resolutionFailure(nil, "could not find window for app '%s'", app)
	}
	return id, nil
}

// appleScriptEscape makes s safe inside an AppleScript string literal.
func appleScriptEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
