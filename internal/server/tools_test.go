package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	expected := []string{
		"mockup_parse",
		"mockup_import_image",
		"mockup_forget",
		"mockup_model",
		"mockup_component",
		"mockup_components_by_type",
		"mockup_relationships",
		"mockup_render_text",
		"mockup_preview",
		"mockup_patterns",
		"mockup_register_patterns",
	}
	tools := GetToolDefinitions()
	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	assert.ElementsMatch(t, expected, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	s := newTestServer(t)
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.InputSchema["type"])
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok)

			if req, ok := tool.InputSchema["required"].([]string); ok {
				for _, name := range req {
					assert.Contains(t, props, name, "required property %s not declared", name)
				}
			}
			for name, p := range props {
				prop, ok := p.(map[string]interface{})
				require.True(t, ok, name)
				assert.NotEmpty(t, prop["type"], name)
			}

			// every listed tool is dispatched
			_, err := s.executeTool(context.Background(), tool.Name, []byte(`{"handle":"x"}`))
			if err != nil {
				assert.NotContains(t, err.Error(), "unknown tool")
			}
		})
	}
}
