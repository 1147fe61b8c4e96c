package server

import (
	"github.com/invopop/jsonschema"

	"github.com/ironsheep/screenshot-mcp/internal/capture"
	"github.com/ironsheep/screenshot-mcp/internal/schema"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

type listWindowsArgs struct {
	Filter string `json:"filter,omitempty" jsonschema_description:"Optional case-insensitive substring matched against window titles and owning app names"`
}

type screenshotInfoArgs struct {
	Path string `json:"path" jsonschema_description:"Path returned by take_screenshot"`
}

type screenshotTextArgs struct {
	Path     string `json:"path" jsonschema_description:"Path returned by take_screenshot"`
	Language string `json:"language,omitempty" jsonschema_description:"Tesseract language code, e.g. eng or deu. Defaults to the server setting."`
}

type screenshotCropArgs struct {
	Path   string  `json:"path" jsonschema_description:"Path returned by take_screenshot"`
	Region string  `json:"region,omitempty" jsonschema:"enum=top-left,enum=top-right,enum=bottom-left,enum=bottom-right,enum=top-half,enum=bottom-half,enum=left-half,enum=right-half,enum=center" jsonschema_description:"Named region. Takes precedence over explicit coordinates."`
	X1     int     `json:"x1,omitempty" jsonschema_description:"Left edge X coordinate (0-based)"`
	Y1     int     `json:"y1,omitempty" jsonschema_description:"Top edge Y coordinate (0-based)"`
	X2     int     `json:"x2,omitempty" jsonschema_description:"Right edge X coordinate (exclusive)"`
	Y2     int     `json:"y2,omitempty" jsonschema_description:"Bottom edge Y coordinate (exclusive)"`
	Scale  float64 `json:"scale,omitempty" jsonschema:"minimum=0,maximum=4" jsonschema_description:"Scale factor applied to the crop, e.g. 2 to zoom in. Default 1."`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        capture.ToolName,
			Description: capture.ToolDescription,
			InputSchema: schema.For(capture.Request{}),
		},
		{
			Name:        "list_windows",
			Description: "Lists on-screen windows with their ids, titles and owning apps. Use it to pick a title for take_screenshot in window mode.",
			InputSchema: schema.For(listWindowsArgs{}),
		},
		{
			Name:        "screenshot_info",
			Description: "Returns width, height, format and file size of a screenshot taken by take_screenshot. Captures are deleted a minute after they are taken.",
			InputSchema: schema.For(screenshotInfoArgs{}),
		},
		{
			Name:        "screenshot_text",
			Description: "Extracts text from a screenshot taken by take_screenshot using OCR, with per-word bounding boxes and confidence.",
			InputSchema: schema.For(screenshotTextArgs{}),
		},
		{
			Name:        "screenshot_crop",
			Description: "Crops a region of a screenshot taken by take_screenshot and returns it as a PNG image. Use it to zoom into areas that need detailed examination.",
			InputSchema: schema.For(screenshotCropArgs{}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
