// Package config loads the YAML configuration shared by the CLI and the MCP
// server.
//
// Defaults are applied first, then the file (when given), then environment
// overrides. The result is validated with go-playground/validator before use.
//
// # Example
//
//	log_level: info
//	segment:
//	  word_gap: 1
//	match:
//	  min_confidence: 0.5
//	hierarchy:
//	  gap: 2
//	  label_sides: [left, above]
//	patterns:
//	  - ./patterns/extra.pat
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
	"github.com/ironsheep/mockup-tools-mcp/internal/hierarchy"
	"github.com/ironsheep/mockup-tools-mcp/internal/logging"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
	"github.com/ironsheep/mockup-tools-mcp/internal/render"
	"github.com/ironsheep/mockup-tools-mcp/internal/segment"
	"github.com/ironsheep/mockup-tools-mcp/internal/source"
)

// Config is the complete configuration.
type Config struct {
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error off disabled"`

	Grid      GridConfig      `yaml:"grid"`
	Segment   SegmentConfig   `yaml:"segment"`
	Match     MatchConfig     `yaml:"match"`
	Hierarchy HierarchyConfig `yaml:"hierarchy"`
	Preview   PreviewConfig   `yaml:"preview"`
	OCR       OCRConfig       `yaml:"ocr"`

	// Patterns lists extra pattern sources loaded after the built-in track.
	Patterns []string `yaml:"patterns" validate:"dive,required"`
}

// GridConfig selects the glyph table and text loading rules.
type GridConfig struct {
	Styles    []string `yaml:"styles" validate:"dive,oneof=single double heavy rounded ascii"`
	Brackets  []string `yaml:"brackets" validate:"dive,len=2"`
	TabWidth  int      `yaml:"tab_width" validate:"gte=1,lte=16"`
	PadRagged bool     `yaml:"pad_ragged"`
}

// SegmentConfig tunes segmentation.
type SegmentConfig struct {
	WordGap int `yaml:"word_gap" validate:"gte=0,lte=8"`
}

// MatchConfig tunes pattern matching.
type MatchConfig struct {
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
	Workers       int     `yaml:"workers" validate:"gte=0,lte=256"`
}

// HierarchyConfig tunes containment and relationships.
type HierarchyConfig struct {
	Tolerance    int      `yaml:"tolerance" validate:"gte=0,lte=8"`
	Gap          int      `yaml:"gap" validate:"gte=0,lte=16"`
	LabelSides   []string `yaml:"label_sides" validate:"dive,oneof=left above right below"`
	ControlTypes []string `yaml:"control_types" validate:"dive,required"`
	LabelType    string   `yaml:"label_type" validate:"required"`
}

// PreviewConfig sizes PNG previews.
type PreviewConfig struct {
	Scale     float64 `yaml:"scale" validate:"gt=0,lte=8"`
	ShowGrid  bool    `yaml:"show_grid"`
	ShowIDs   bool    `yaml:"show_ids"`
	GridColor string  `yaml:"grid_color" validate:"omitempty,hexcolor"`
}

// OCRConfig configures screenshot import.
type OCRConfig struct {
	Language string  `yaml:"language" validate:"required"`
	Upscale  float64 `yaml:"upscale" validate:"gte=1,lte=8"`
}

// Default returns the built-in configuration.
func Default() Config {
	h := hierarchy.DefaultOptions()
	sides := make([]string, len(h.LabelSides))
	for i, s := range h.LabelSides {
		sides[i] = string(s)
	}
	return Config{
		LogLevel: "info",
		Grid:     GridConfig{TabWidth: source.DefaultTabWidth, PadRagged: true},
		Segment:  SegmentConfig{WordGap: segment.DefaultOptions().WordGap},
		Match:    MatchConfig{MinConfidence: pattern.DefaultMinConfidence},
		Hierarchy: HierarchyConfig{
			Tolerance:    h.Tolerance,
			Gap:          h.Gap,
			LabelSides:   sides,
			ControlTypes: append([]string(nil), h.ControlTypes...),
			LabelType:    h.LabelType,
		},
		Preview: PreviewConfig{Scale: 1, ShowIDs: true, GridColor: render.DefaultPreviewOptions().GridColor},
		OCR:     OCRConfig{Language: "eng", Upscale: 2},
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv(logging.EnvLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Glyphs builds the glyph table.
func (c Config) Glyphs() (*grid.Glyphs, error) {
	var opts []grid.GlyphOption
	if len(c.Grid.Styles) > 0 {
		styles := make([]grid.Style, len(c.Grid.Styles))
		for i, s := range c.Grid.Styles {
			styles[i] = grid.Style(s)
		}
		opts = append(opts, grid.WithStyles(styles...))
	}
	if len(c.Grid.Brackets) > 0 {
		opts = append(opts, grid.WithBrackets(c.Grid.Brackets...))
	}
	return grid.NewGlyphs(opts...)
}

// SourceOptions converts the grid section into text cleanup options.
func (c Config) SourceOptions(glyphs *grid.Glyphs) source.Options {
	return source.Options{TabWidth: c.Grid.TabWidth, PadRagged: c.Grid.PadRagged, Glyphs: glyphs}
}

// SegmentOptions converts the segment section.
func (c Config) SegmentOptions() segment.Options {
	return segment.Options{WordGap: c.Segment.WordGap}
}

// MatchOptions converts the match section.
func (c Config) MatchOptions() pattern.Options {
	return pattern.Options{MinConfidence: c.Match.MinConfidence, Workers: c.Match.Workers}
}

// HierarchyOptions converts the hierarchy section.
func (c Config) HierarchyOptions() hierarchy.Options {
	sides := make([]hierarchy.Side, len(c.Hierarchy.LabelSides))
	for i, s := range c.Hierarchy.LabelSides {
		sides[i] = hierarchy.Side(s)
	}
	return hierarchy.Options{
		Tolerance:    c.Hierarchy.Tolerance,
		Gap:          c.Hierarchy.Gap,
		LabelSides:   sides,
		ControlTypes: append([]string(nil), c.Hierarchy.ControlTypes...),
		LabelType:    c.Hierarchy.LabelType,
	}
}

// PreviewOptions converts the preview section.
func (c Config) PreviewOptions() render.PreviewOptions {
	return render.PreviewOptions{
		Scale:     c.Preview.Scale,
		ShowGrid:  c.Preview.ShowGrid,
		ShowIDs:   c.Preview.ShowIDs,
		GridColor: c.Preview.GridColor,
	}
}

// LoadPatterns registers the built-in track followed by every configured
// pattern file.
func (c Config) LoadPatterns(reg *pattern.Registry) error {
	if err := pattern.LoadBuiltin(reg); err != nil {
		return err
	}
	for _, path := range c.Patterns {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: pattern file: %w", err)
		}
		if _, err := reg.Load(path, string(data)); err != nil {
			return err
		}
	}
	return nil
}
