package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var handleProperty = map[string]interface{}{
	"type":        "string",
	"description": "Model handle returned by mockup_parse or mockup_import_image",
}

var componentIDProperty = map[string]interface{}{
	"type":        "integer",
	"description": "Component ID within the model",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Recognition
		{
			Name:        "mockup_parse",
			Description: "Recognize the UI components of a text mockup drawn with box-drawing characters, brackets and markers. Give either the mockup text or a path to a file. Returns a handle for the other mockup_* tools plus a summary tree.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Mockup text, one grid row per line",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a mockup text file",
					},
				},
			},
		},
		{
			Name:        "mockup_import_image",
			Description: "Read a screenshot of a text mockup with OCR, lay the words out as text and optionally recognize it. Returns the text, the recognized words and, when parse is true, a model handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from configuration (eng)",
					},
					"upscale": map[string]interface{}{
						"type":        "number",
						"description": "Enlarge the image before OCR. Default from configuration (2.0)",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional pixel region to read",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Drop words below this OCR confidence (0-1). Default 0",
					},
					"frames": map[string]interface{}{
						"type":        "boolean",
						"description": "Redraw rectangles found in the image as box outlines. Default true",
						"default":     true,
					},
					"parse": map[string]interface{}{
						"type":        "boolean",
						"description": "Also recognize the imported text. Default true",
						"default":     true,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mockup_forget",
			Description: "Release a model handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
				},
				"required": []string{"handle"},
			},
		},

		// Model Queries
		{
			Name:        "mockup_model",
			Description: "Return the complete component model: every component with type, box, properties, parent, children and relationships, plus the root IDs and diagnostics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "mockup_component",
			Description: "Return one component with its ancestor chain and children.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
					"id":     componentIDProperty,
				},
				"required": []string{"handle", "id"},
			},
		},
		{
			Name:        "mockup_components_by_type",
			Description: "List the components of one type (button, checkbox, radio, textfield, dropdown, text, window, panel, separator, unclassified or a custom type).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
					"type": map[string]interface{}{
						"type":        "string",
						"description": "Component type",
					},
				},
				"required": []string{"handle", "type"},
			},
		},
		{
			Name:        "mockup_relationships",
			Description: "List relationship edges (adjacent:left/right/above/below, labeled_by, label_for). Give an id to restrict to one component's outgoing edges.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
					"id":     componentIDProperty,
				},
				"required": []string{"handle"},
			},
		},

		// Rendering
		{
			Name:        "mockup_render_text",
			Description: "Re-render a model as text. Format \"text\" repaints the mockup; \"tree\" lists the component forest with properties.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"text", "tree"},
						"description": "Output format. Default text",
						"default":     "text",
					},
				},
				"required": []string{"handle"},
			},
		},
		{
			Name:        "mockup_preview",
			Description: "Draw the model as a PNG with component outlines colored by type. Returns base64-encoded PNG and the type colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"handle": handleProperty,
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor. Default from configuration (1.0)",
					},
					"show_grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the character cell grid",
					},
					"show_ids": map[string]interface{}{
						"type":        "boolean",
						"description": "Label components with their IDs",
					},
				},
				"required": []string{"handle"},
			},
		},

		// Patterns
		{
			Name:        "mockup_patterns",
			Description: "List the registered recognition patterns in registration order. Set include_source to get each pattern's definition text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"include_source": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the definition text of each pattern",
					},
				},
			},
		},
		{
			Name:        "mockup_register_patterns",
			Description: "Register patterns written in the tag/pluck/trap grammar. Either all patterns in the text are registered or none are. Later patterns win ties against earlier ones.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Pattern definitions (track/pattern/tag/pluck/trap/end/execute)",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Source name used in error messages",
					},
				},
				"required": []string{"text"},
			},
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
