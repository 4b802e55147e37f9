package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/mockup-tools-mcp/internal/model"
	"github.com/ironsheep/mockup-tools-mcp/internal/ocr"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
	"github.com/ironsheep/mockup-tools-mcp/internal/render"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mockup_parse", "mockup_model").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.log.Debug().Str("tool", params.Name).Dur("elapsed", time.Since(start)).Msg("tool done")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Recognition
	case "mockup_parse":
		return s.handleParse(ctx, args)
	case "mockup_import_image":
		return s.handleImportImage(ctx, args)
	case "mockup_forget":
		return s.handleForget(args)

	// Model Queries
	case "mockup_model":
		return s.handleModel(args)
	case "mockup_component":
		return s.handleComponent(args)
	case "mockup_components_by_type":
		return s.handleComponentsByType(args)
	case "mockup_relationships":
		return s.handleRelationships(args)

	// Rendering
	case "mockup_render_text":
		return s.handleRenderText(args)
	case "mockup_preview":
		return s.handlePreview(args)

	// Patterns
	case "mockup_patterns":
		return s.handlePatterns(args)
	case "mockup_register_patterns":
		return s.handleRegisterPatterns(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Recognition Handlers ===

type parseArgs struct {
	Text   *string `json:"text"`
	Path   string  `json:"path"`
	Reload bool    `json:"reload"`
}

// ParseResult summarizes a recognized model.
type ParseResult struct {
	Handle      string             `json:"handle"`
	Components  int                `json:"components"`
	Roots       []int              `json:"roots"`
	Types       map[string]int     `json:"types"`
	Diagnostics []model.Diagnostic `json:"diagnostics,omitempty"`
	Tree        string             `json:"tree"`
}

func summarize(handle string, m *model.ComponentModel) *ParseResult {
	return &ParseResult{
		Handle:      handle,
		Components:  m.Len(),
		Roots:       m.RootIDs(),
		Types:       m.Types(),
		Diagnostics: m.Diagnostics(),
		Tree:        render.TreeString(m),
	}
}

func (s *Server) handleParse(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a parseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var (
		m      *model.ComponentModel
		origin string
		err    error
	)
	switch {
	case a.Text != nil && a.Path != "":
		return nil, errors.New("give either text or path, not both")
	case a.Text != nil:
		origin = "text"
		m, err = s.pipeline.Source(ctx, *a.Text)
	case a.Path != "":
		origin = a.Path
		if a.Reload {
			s.files.Evict(a.Path)
		}
		g, lerr := s.files.Load(a.Path)
		if lerr != nil {
			return nil, lerr
		}
		m, err = s.pipeline.Run(ctx, g)
	default:
		return nil, errors.New("text or path is required")
	}
	if err != nil {
		return nil, err
	}
	return summarize(s.models.put(m, origin), m), nil
}

type importImageArgs struct {
	Path          string     `json:"path"`
	Language      string     `json:"language"`
	Upscale       float64    `json:"upscale"`
	Region        *regionArg `json:"region"`
	MinConfidence float64    `json:"min_confidence"`
	Frames        *bool      `json:"frames"`
	Parse         *bool      `json:"parse"`
}

type regionArg struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// ImportResult is an OCR import, with the parse summary when requested.
type ImportResult struct {
	Text   string       `json:"text"`
	Words  []ocr.Word   `json:"words"`
	Frames []ocr.Frame  `json:"frames,omitempty"`
	Model  *ParseResult `json:"model,omitempty"`
}

func (s *Server) handleImportImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a importImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	opts := ocr.Options{
		Language:      s.cfg.OCR.Language,
		Upscale:       s.cfg.OCR.Upscale,
		MinConfidence: a.MinConfidence,
		Frames:        a.Frames == nil || *a.Frames,
	}
	if a.Language != "" {
		opts.Language = a.Language
	}
	if a.Upscale > 0 {
		opts.Upscale = a.Upscale
	}
	if a.Region != nil {
		if a.Region.X1 >= a.Region.X2 || a.Region.Y1 >= a.Region.Y2 {
			return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
		}
		opts.Region = image.Rect(a.Region.X1, a.Region.Y1, a.Region.X2, a.Region.Y2)
	}

	img, err := ocr.Open(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := ocr.Import(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	out := &ImportResult{Text: res.Text(), Words: res.Words, Frames: res.Frames}
	if a.Parse == nil || *a.Parse {
		m, err := s.pipeline.Source(ctx, out.Text)
		if err != nil {
			return nil, err
		}
		out.Model = summarize(s.models.put(m, a.Path), m)
	}
	return out, nil
}

type handleArgs struct {
	Handle string `json:"handle"`
}

func (s *Server) handleForget(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{"forgotten": s.models.forget(a.Handle)}, nil
}

// === Model Query Handlers ===

func (s *Server) loadModel(args json.RawMessage, into interface{}) (*model.ComponentModel, error) {
	if err := json.Unmarshal(args, into); err != nil {
		return nil, err
	}
	var h handleArgs
	if err := json.Unmarshal(args, &h); err != nil {
		return nil, err
	}
	cm, err := s.models.get(h.Handle)
	if err != nil {
		return nil, err
	}
	return cm.model, nil
}

func (s *Server) handleModel(args json.RawMessage) (interface{}, error) {
	var a handleArgs
	return s.loadModel(args, &a)
}

type componentArgs struct {
	Handle string `json:"handle"`
	ID     *int   `json:"id"`
}

// ComponentResult is one component with its surroundings.
type ComponentResult struct {
	Component model.Component   `json:"component"`
	Ancestors []int             `json:"ancestors"`
	Children  []model.Component `json:"children"`
}

func (s *Server) component(m *model.ComponentModel, id *int) (model.Component, error) {
	if id == nil {
		return model.Component{}, errors.New("id is required")
	}
	c, ok := m.Component(*id)
	if !ok {
		return model.Component{}, fmt.Errorf("%w: %d", model.ErrUnknownComponent, *id)
	}
	return c, nil
}

func (s *Server) handleComponent(args json.RawMessage) (interface{}, error) {
	var a componentArgs
	m, err := s.loadModel(args, &a)
	if err != nil {
		return nil, err
	}
	c, err := s.component(m, a.ID)
	if err != nil {
		return nil, err
	}
	return &ComponentResult{
		Component: c,
		Ancestors: append([]int{}, m.Ancestors(c.ID)...),
		Children:  append([]model.Component{}, m.Children(c.ID)...),
	}, nil
}

type byTypeArgs struct {
	Handle string `json:"handle"`
	Type   string `json:"type"`
}

func (s *Server) handleComponentsByType(args json.RawMessage) (interface{}, error) {
	var a byTypeArgs
	m, err := s.loadModel(args, &a)
	if err != nil {
		return nil, err
	}
	if a.Type == "" {
		return nil, errors.New("type is required")
	}
	comps := m.ByType(a.Type)
	return map[string]interface{}{
		"type":       a.Type,
		"count":      len(comps),
		"components": append([]model.Component{}, comps...),
	}, nil
}

func (s *Server) handleRelationships(args json.RawMessage) (interface{}, error) {
	var a componentArgs
	m, err := s.loadModel(args, &a)
	if err != nil {
		return nil, err
	}
	edges := m.Edges()
	if a.ID != nil {
		c, err := s.component(m, a.ID)
		if err != nil {
			return nil, err
		}
		edges = nil
		for _, r := range c.Relationships {
			edges = append(edges, model.Edge{From: c.ID, Kind: r.Kind, To: r.Target})
		}
	}
	return map[string]interface{}{
		"count": len(edges),
		"edges": append([]model.Edge{}, edges...),
	}, nil
}

// === Rendering Handlers ===

type renderTextArgs struct {
	Handle string `json:"handle"`
	Format string `json:"format"`
}

func (s *Server) handleRenderText(args json.RawMessage) (interface{}, error) {
	var a renderTextArgs
	m, err := s.loadModel(args, &a)
	if err != nil {
		return nil, err
	}
	switch a.Format {
	case "", "text":
		return map[string]interface{}{"format": "text", "text": render.Text(m)}, nil
	case "tree":
		return map[string]interface{}{"format": "tree", "text": render.TreeString(m)}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", a.Format)
	}
}

type previewArgs struct {
	Handle   string   `json:"handle"`
	Scale    *float64 `json:"scale"`
	ShowGrid *bool    `json:"show_grid"`
	ShowIDs  *bool    `json:"show_ids"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	m, err := s.loadModel(args, &a)
	if err != nil {
		return nil, err
	}
	opts := s.cfg.PreviewOptions()
	if a.Scale != nil {
		if *a.Scale <= 0 || *a.Scale > 8 {
			return nil, fmt.Errorf("scale must be in (0, 8], got %g", *a.Scale)
		}
		opts.Scale = *a.Scale
	}
	if a.ShowGrid != nil {
		opts.ShowGrid = *a.ShowGrid
	}
	if a.ShowIDs != nil {
		opts.ShowIDs = *a.ShowIDs
	}
	return render.Preview(m, s.pipeline.Glyphs(), opts)
}

// === Pattern Handlers ===

type patternsArgs struct {
	IncludeSource bool `json:"include_source"`
}

// PatternInfo describes a registered pattern.
type PatternInfo struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
}

func describePatterns(ps []pattern.Pattern, withSource bool) []PatternInfo {
	out := make([]PatternInfo, 0, len(ps))
	for _, p := range ps {
		info := PatternInfo{ID: p.ID(), Type: p.Type()}
		if str, ok := p.(fmt.Stringer); ok && withSource {
			info.Source = str.String()
		}
		out = append(out, info)
	}
	return out
}

func (s *Server) handlePatterns(args json.RawMessage) (interface{}, error) {
	var a patternsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ps := s.registry.Patterns()
	return map[string]interface{}{
		"count":    len(ps),
		"patterns": describePatterns(ps, a.IncludeSource),
	}, nil
}

type registerPatternsArgs struct {
	Text string `json:"text"`
	Name string `json:"name"`
}

func (s *Server) handleRegisterPatterns(args json.RawMessage) (interface{}, error) {
	var a registerPatternsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Name == "" {
		a.Name = "inline"
	}
	ps, err := s.registry.Load(a.Name, a.Text)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("patterns", len(ps)).Str("source", a.Name).Msg("patterns registered")
	return map[string]interface{}{
		"registered": describePatterns(ps, false),
		"total":      s.registry.Len(),
	}, nil
}
