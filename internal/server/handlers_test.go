package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
)

// callTool issues a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name, args string) *MCPResponse {
	t.Helper()
	params := fmt.Sprintf(`{"name":%q,"arguments":%s}`, name, args)
	return s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(params),
	})
}

// toolResult asserts resp carries a tool result and returns it.
func toolResult(t *testing.T, resp *MCPResponse) *ToolResult {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error, "unexpected JSON-RPC error: %+v", resp.Error)
	result, ok := resp.Result.(*ToolResult)
	require.True(t, ok, "result is %T", resp.Result)
	require.Len(t, result.Content, 1)
	return result
}

func TestTakeScreenshot_Success(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})

	result := toolResult(t, callTool(t, s, "take_screenshot", `{"mode":"full"}`))
	assert.False(t, result.IsError)

	path := svc.PathFor(fixedNow)
	assert.Equal(t,
		"Screenshot captured successfully and saved to "+path+". Image has been copied to clipboard.",
		result.Content[0].Text)
	assert.FileExists(t, path)
}

func TestTakeScreenshot_ClipboardFailureOmitsSentence(t *testing.T) {
	runner := &capture.FakeRunner{Handle: func(name string, args []string) (string, error) {
		if name == "osascript" && strings.Contains(args[len(args)-1], "set the clipboard") {
			return "", errors.New("not authorized")
		}
		return capture.FakeHost(name, args)
	}}
	s, svc := newTestServer(t, runner)

	result := toolResult(t, callTool(t, s, "take_screenshot", `{"mode":"window","target":"notes"}`))
	assert.False(t, result.IsError)
	assert.Equal(t, "Screenshot captured successfully and saved to "+svc.PathFor(fixedNow)+".", result.Content[0].Text)
}

func TestTakeScreenshot_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		runner   *capture.FakeRunner
		wantText string
	}{
		{
			name:     "missing target",
			args:     `{"mode":"app"}`,
			wantText: "Error capturing screenshot: target (app name) required for 'app' mode",
		},
		{
			name:     "missing mode",
			args:     `{}`,
			wantText: "Error capturing screenshot: missing required argument: mode",
		},
		{
			name:     "no arguments",
			args:     `null`,
			wantText: "Error capturing screenshot: missing required argument: mode",
		},
		{
			name:     "unknown mode",
			args:     `{"mode":"zoom"}`,
			wantText: "Error capturing screenshot: unknown mode: zoom",
		},
		{
			name:     "window not found",
			args:     `{"mode":"window","target":"Terminal"}`,
			wantText: "Error capturing screenshot: no window found with title matching 'Terminal'",
		},
		{
			name: "capture utility fails",
			args: `{"mode":"display","target":"3"}`,
			runner: &capture.FakeRunner{Handle: func(name string, args []string) (string, error) {
				if name == "screencapture" {
					return "", errors.New("exit status 1")
				}
				return capture.FakeHost(name, args)
			}},
			wantText: "Error capturing screenshot: failed to capture display 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := tt.runner
			if runner == nil {
				runner = &capture.FakeRunner{}
			}
			s, _ := newTestServer(t, runner)

			result := toolResult(t, callTool(t, s, "take_screenshot", tt.args))
			assert.True(t, result.IsError)
			assert.True(t, strings.HasPrefix(result.Content[0].Text, tt.wantText), result.Content[0].Text)
		})
	}
}

func TestToolsCall_ProtocolErrors(t *testing.T) {
	s, _ := newTestServer(t, &capture.FakeRunner{})

	resp := callTool(t, s, "image_crop", `{}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
	assert.Equal(t, "Unknown tool: image_crop", resp.Error.Message)

	resp = callTool(t, s, "take_screenshot", `{"mode":42}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)

	resp = s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`[]`),
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestListWindows(t *testing.T) {
	tests := []struct {
		args      string
		wantCount int
	}{
		{`{}`, 3},
		{`{"filter":"mail"}`, 1},
		{`{"filter":"textedit"}`, 1},
		{`{"filter":"terminal"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			s, _ := newTestServer(t, &capture.FakeRunner{})

			result := toolResult(t, callTool(t, s, "list_windows", tt.args))
			require.False(t, result.IsError)

			var got listWindowsResult
			require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &got))
			assert.Equal(t, tt.wantCount, got.Count)
			assert.Len(t, got.Windows, tt.wantCount)
		})
	}
}

func TestListWindows_Failure(t *testing.T) {
	runner := &capture.FakeRunner{Handle: func(string, []string) (string, error) {
		return "", errors.New("osascript: not allowed assistive access")
	}}
	s, _ := newTestServer(t, runner)

	result := toolResult(t, callTool(t, s, "list_windows", `{}`))
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "Error listing windows")
}

func TestScreenshotInfo(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})
	toolResult(t, callTool(t, s, "take_screenshot", `{"mode":"full","max_width":160}`))

	path := svc.PathFor(fixedNow)
	result := toolResult(t, callTool(t, s, "screenshot_info", fmt.Sprintf(`{"path":%q}`, path)))
	require.False(t, result.IsError, result.Content[0].Text)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &info))
	assert.EqualValues(t, 160, info["width"])
	assert.EqualValues(t, 100, info["height"])
	assert.Equal(t, "png", info["format"])
}

func TestScreenshotInfo_RejectsForeignPaths(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})

	for _, args := range []string{
		`{}`,
		`{"path":"/etc/hosts"}`,
		fmt.Sprintf(`{"path":%q}`, filepath.Join(filepath.Dir(svc.PathFor(fixedNow)), "..", "ui-1.png")),
	} {
		result := toolResult(t, callTool(t, s, "screenshot_info", args))
		assert.True(t, result.IsError, args)
		assert.True(t, strings.HasPrefix(result.Content[0].Text, "Error reading screenshot: "), result.Content[0].Text)
	}
}

func TestScreenshotInfo_Expired(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})

	result := toolResult(t, callTool(t, s, "screenshot_info", fmt.Sprintf(`{"path":%q}`, svc.PathFor(fixedNow))))
	assert.True(t, result.IsError)
}

func TestScreenshotText_MissingFile(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})

	result := toolResult(t, callTool(t, s, "screenshot_text", fmt.Sprintf(`{"path":%q,"language":"eng"}`, svc.PathFor(fixedNow))))
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(result.Content[0].Text, "Error extracting text: "))
}

func TestScreenshotMessage(t *testing.T) {
	res := &capture.Result{ImagePath: "/tmp/ui-1.png", CopiedToClipboard: true}
	assert.Equal(t, "Screenshot captured successfully and saved to /tmp/ui-1.png. Image has been copied to clipboard.", screenshotMessage(res))

	res.CopiedToClipboard = false
	assert.Equal(t, "Screenshot captured successfully and saved to /tmp/ui-1.png.", screenshotMessage(res))
}

func TestScreenshotCrop(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})
	toolResult(t, callTool(t, s, "take_screenshot", `{"mode":"full"}`))
	path := svc.PathFor(fixedNow)

	tests := []struct {
		name       string
		args       string
		wantWidth  int
		wantHeight int
	}{
		{"named region", fmt.Sprintf(`{"path":%q,"region":"top-left"}`, path), 160, 100},
		{"coordinates", fmt.Sprintf(`{"path":%q,"x1":10,"y1":20,"x2":60,"y2":45}`, path), 50, 25},
		{"scaled", fmt.Sprintf(`{"path":%q,"region":"center","scale":2}`, path), 320, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := toolResult(t, callTool(t, s, "screenshot_crop", tt.args))
			require.False(t, result.IsError, result.Content[0].Text)

			c := result.Content[0]
			assert.Equal(t, "image", c.Type)
			assert.Equal(t, "image/png", c.MimeType)

			data, err := base64.StdEncoding.DecodeString(c.Data)
			require.NoError(t, err)
			cfg, err := png.DecodeConfig(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, cfg.Width)
			assert.Equal(t, tt.wantHeight, cfg.Height)
		})
	}
}

func TestScreenshotCrop_Errors(t *testing.T) {
	s, svc := newTestServer(t, &capture.FakeRunner{})
	toolResult(t, callTool(t, s, "take_screenshot", `{"mode":"full"}`))
	path := svc.PathFor(fixedNow)

	for _, args := range []string{
		`{"path":"/etc/hosts","region":"center"}`,
		fmt.Sprintf(`{"path":%q}`, path),
		fmt.Sprintf(`{"path":%q,"region":"middle"}`, path),
		fmt.Sprintf(`{"path":%q,"x1":0,"y1":0,"x2":999,"y2":10}`, path),
	} {
		result := toolResult(t, callTool(t, s, "screenshot_crop", args))
		assert.True(t, result.IsError, args)
		assert.Equal(t, "text", result.Content[0].Type)
		assert.True(t, strings.HasPrefix(result.Content[0].Text, "Error cropping screenshot: "), result.Content[0].Text)
	}
}
