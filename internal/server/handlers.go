package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/imaging"
	"github.com/ironsheep/screenshot-mcp/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "take_screenshot").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// Content is one item of a tool result: text, or a base64 image.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolResult is the MCP result of a tools/call request. Tool failures are
// results with IsError set, not JSON-RPC errors.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// errInvalidArguments marks arguments that do not decode into the tool's
// argument struct.
var errInvalidArguments = errors.New("invalid arguments")

// errUnknownTool marks tools/call requests for a tool that does not exist.
var errUnknownTool = errors.New("unknown tool")

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool output in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "..."}],
//	  "isError": true // only on failure
//	}
//
// Unknown tools and undecodable arguments return JSON-RPC error -32602.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	log := s.logger.With().
		Str("call_id", uuid.NewString()).
		Str("tool", params.Name).
		Dur("elapsed", time.Since(start)).
		Logger()

	if err != nil {
		log.Warn().Err(err).Msg("tool call rejected")
		if errors.Is(err, errUnknownTool) {
			return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name), "")
		}
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	log.Debug().Bool("is_error", result.IsError).Msg("tool call finished")
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// A returned error is a protocol problem; tool failures come back as results.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error) {
	switch name {
	case capture.ToolName:
		return s.handleTakeScreenshot(ctx, args)
	case "list_windows":
		return s.handleListWindows(ctx, args)
	case "screenshot_info":
		return s.handleScreenshotInfo(args)
	case "screenshot_text":
		return s.handleScreenshotText(args)
	case "screenshot_crop":
		return s.handleScreenshotCrop(args)
	default:
		return nil, errors.Mark(errors.Newf("unknown tool: %s", name), errUnknownTool)
	}
}

// decodeArgs unmarshals tool arguments into v. Absent arguments leave v zero.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid arguments"), errInvalidArguments)
	}
	return nil
}

func textResult(text string) *ToolResult {
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

func jsonResult(v interface{}) *ToolResult {
	return textResult(mustMarshalJSON(v))
}

func errorResult(prefix string, err error) *ToolResult {
	r := textResult(fmt.Sprintf("%s: %v", prefix, err))
	r.IsError = true
	return r
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Capture ===

func (s *Server) handleTakeScreenshot(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var req capture.Request
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}

	res, err := s.capture.Capture(ctx, req)
	if err != nil {
		return errorResult("Error capturing screenshot", err), nil
	}
	return textResult(screenshotMessage(res)), nil
}

// screenshotMessage is the text returned for a successful capture.
func screenshotMessage(res *capture.Result) string {
	msg := fmt.Sprintf("Screenshot captured successfully and saved to %s.", res.ImagePath)
	if res.CopiedToClipboard {
		msg += " Image has been copied to clipboard."
	}
	return msg
}

type listWindowsResult struct {
	Windows []capture.Window `json:"windows"`
	Count   int              `json:"count"`
}

func (s *Server) handleListWindows(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
	var a listWindowsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	windows, err := s.capture.ListWindows(ctx)
	if err != nil {
		return errorResult("Error listing windows", err), nil
	}
	windows = capture.FilterWindows(windows, strings.TrimSpace(a.Filter))
	if windows == nil {
		windows = []capture.Window{}
	}
	return jsonResult(listWindowsResult{Windows: windows, Count: len(windows)}), nil
}

// === Inspection ===

// capturePath checks that path names a file this server captured.
func (s *Server) capturePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("missing required argument: path")
	}
	if !s.capture.Owns(path) {
		return "", errors.Newf("%s is not a screenshot taken by this server", path)
	}
	return path, nil
}

func (s *Server) handleScreenshotInfo(args json.RawMessage) (*ToolResult, error) {
	var a screenshotInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	path, err := s.capturePath(a.Path)
	if err != nil {
		return errorResult("Error reading screenshot", err), nil
	}
	info, err := imaging.Inspect(path)
	if err != nil {
		return errorResult("Error reading screenshot", err), nil
	}
	return jsonResult(info), nil
}

func (s *Server) handleScreenshotText(args json.RawMessage) (*ToolResult, error) {
	var a screenshotTextArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.ocrLanguage
	}

	path, err := s.capturePath(a.Path)
	if err != nil {
		return errorResult("Error extracting text", err), nil
	}
	result, err := ocr.ExtractText(path, a.Language)
	if err != nil {
		return errorResult("Error extracting text", err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleScreenshotCrop(args json.RawMessage) (*ToolResult, error) {
	var a screenshotCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	path, err := s.capturePath(a.Path)
	if err != nil {
		return errorResult("Error cropping screenshot", err), nil
	}
	rect := imaging.Rect{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}
	crop, err := imaging.CropFile(path, strings.TrimSpace(a.Region), rect, a.Scale)
	if err != nil {
		return errorResult("Error cropping screenshot", err), nil
	}
	return &ToolResult{Content: []Content{{
		Type:     "image",
		Data:     crop.ImageBase64,
		MimeType: crop.MimeType,
	}}}, nil
}
