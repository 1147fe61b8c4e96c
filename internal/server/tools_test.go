package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"take_screenshot", "list_windows", "screenshot_info", "screenshot_text", "screenshot_crop"}, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	wantRequired := map[string][]interface{}{
		"take_screenshot": {"mode"},
		"list_windows":    nil,
		"screenshot_info": {"path"},
		"screenshot_text": {"path"},
		"screenshot_crop": {"path"},
	}

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)

			data, err := json.Marshal(tool)
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))

			schema, ok := decoded["inputSchema"].(map[string]interface{})
			require.True(t, ok, "inputSchema must be an object")
			assert.Equal(t, "object", schema["type"])
			assert.Contains(t, schema, "properties")

			if want := wantRequired[tool.Name]; want != nil {
				assert.Equal(t, want, schema["required"])
			} else {
				assert.NotContains(t, schema, "required")
			}
		})
	}
}

func TestTakeScreenshotSchema_ModeEnum(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions()[0].InputSchema)
	require.NoError(t, err)

	var schema struct {
		Properties map[string]struct {
			Type string        `json:"type"`
			Enum []interface{} `json:"enum"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, []interface{}{"full", "app", "window", "display"}, schema.Properties["mode"].Enum)
	assert.Equal(t, "string", schema.Properties["target"].Type)
	assert.Equal(t, "integer", schema.Properties["max_width"].Type)
}
