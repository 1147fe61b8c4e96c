package capture

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// FakeWindowsJSON is the window list FakeHost reports.
const FakeWindowsJSON = `[
  {"id": 77, "title": "Inbox - Mail", "owner": "Mail"},
  {"id": 78, "title": "notes.txt", "owner": "TextEdit"},
  {"id": 79, "title": "", "owner": "Dock"}
]`

// FakeAppWindowID is the window id FakeHost reports for any app.
const FakeAppWindowID = 4242

// Call is one command seen by a FakeRunner.
type Call struct {
	Name string
	Args []string
}

// FakeRunner records every command and answers with FakeHost unless Handle
// is set.
type FakeRunner struct {
	Handle func(name string, args []string) (string, error)

	mu    sync.Mutex
	calls []Call
}

var _ CommandRunner = (*FakeRunner)(nil)

func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.Handle != nil {
		return f.Handle(name, args)
	}
	return FakeHost(name, args)
}

// Calls returns every recorded command in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded commands invoking name.
func (f *FakeRunner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ClipboardCalls returns the osascript calls that set the clipboard.
func (f *FakeRunner) ClipboardCalls() []Call {
	var out []Call
	for _, c := range f.CallsTo("osascript") {
		if len(c.Args) == 2 && strings.Contains(c.Args[1], "set the clipboard") {
			out = append(out, c)
		}
	}
	return out
}

// FakeHost answers like a healthy macOS host: screencapture writes a 320x200
// PNG to its last argument, window enumeration returns FakeWindowsJSON and
// the System Events lookup returns FakeAppWindowID.
func FakeHost(name string, args []string) (string, error) {
	switch name {
	case "screencapture":
		return "", WriteFakePNG(args[len(args)-1], 320, 200)
	case "osascript":
		if len(args) > 1 && args[0] == "-l" {
			return FakeWindowsJSON, nil
		}
		if strings.Contains(args[len(args)-1], "System Events") {
			return strconv.Itoa(FakeAppWindowID) + "\n", nil
		}
		return "", nil
	}
	return "", errors.Newf("unexpected command %s", name)
}

// WriteFakePNG writes a width x height gradient PNG to path.
func WriteFakePNG(path string, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
