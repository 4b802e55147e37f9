// Package recognize runs the full recognition pipeline:
//
//	grid -> segment -> features -> pattern -> hierarchy -> model
//
// Stages run one after another, each on the complete output of the previous
// one. Feature extraction and matching fan out per candidate internally.
package recognize

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/mockup-tools-mcp/internal/config"
	"github.com/ironsheep/mockup-tools-mcp/internal/features"
	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
	"github.com/ironsheep/mockup-tools-mcp/internal/hierarchy"
	"github.com/ironsheep/mockup-tools-mcp/internal/model"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
	"github.com/ironsheep/mockup-tools-mcp/internal/segment"
	"github.com/ironsheep/mockup-tools-mcp/internal/source"
)

// Stage names a pipeline step in errors and logs.
type Stage string

const (
	StageGrid      Stage = "grid"
	StageSegment   Stage = "segment"
	StageFeatures  Stage = "features"
	StageMatch     Stage = "match"
	StageHierarchy Stage = "hierarchy"
)

// StageError wraps a fatal error with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("recognize: %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Pipeline is a configured recognizer. It is safe for concurrent use.
type Pipeline struct {
	glyphs    *grid.Glyphs
	source    source.Options
	segmenter *segment.Segmenter
	matcher   *pattern.Interpreter
	builder   *hierarchy.Builder
	log       zerolog.Logger
}

// New creates a pipeline over reg.
func New(reg *pattern.Registry, cfg config.Config, log zerolog.Logger) (*Pipeline, error) {
	glyphs, err := cfg.Glyphs()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	return &Pipeline{
		glyphs:    glyphs,
		source:    cfg.SourceOptions(glyphs),
		segmenter: segment.New(cfg.SegmentOptions()),
		matcher:   pattern.NewInterpreter(reg, cfg.MatchOptions()),
		builder:   hierarchy.New(cfg.HierarchyOptions()),
		log:       log.With().Str("component", "recognize").Logger(),
	}, nil
}

// Glyphs returns the glyph table grids should be built with.
func (p *Pipeline) Glyphs() *grid.Glyphs { return p.glyphs }

// SourceOptions returns the text cleanup Source applies.
func (p *Pipeline) SourceOptions() source.Options { return p.source }

// Source cleans text, builds a grid and runs the pipeline on it.
func (p *Pipeline) Source(ctx context.Context, text string) (*model.ComponentModel, error) {
	g, err := source.Parse(text, p.source)
	if err != nil {
		return nil, &StageError{Stage: StageGrid, Err: err}
	}
	return p.Run(ctx, g)
}

// Run recognizes the components of g.
func (p *Pipeline) Run(ctx context.Context, g grid.Grid) (*model.ComponentModel, error) {
	start := time.Now()

	cands, err := p.segmenter.Segment(g)
	if err != nil {
		return nil, &StageError{Stage: StageSegment, Err: err}
	}
	p.log.Debug().Int("candidates", len(cands)).Dur("elapsed", time.Since(start)).Msg("segmented")

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StageFeatures, Err: err}
	}
	t := time.Now()
	vecs, err := features.Extract(g, cands)
	if err != nil {
		return nil, &StageError{Stage: StageFeatures, Err: err}
	}
	p.log.Debug().Dur("elapsed", time.Since(t)).Msg("features extracted")

	t = time.Now()
	matches, err := p.matcher.Match(ctx, g.Glyphs(), vecs)
	if err != nil {
		return nil, &StageError{Stage: StageMatch, Err: err}
	}
	matched := 0
	for _, m := range matches {
		if m != nil {
			matched++
		}
	}
	p.log.Debug().Int("matched", matched).Dur("elapsed", time.Since(t)).Msg("patterns matched")

	m, err := p.builder.Build(cands, matches)
	if err != nil {
		return nil, &StageError{Stage: StageHierarchy, Err: err}
	}

	ev := p.log.Info().
		Int("width", g.Width()).
		Int("height", g.Height()).
		Int("components", m.Len()).
		Int("roots", len(m.RootIDs())).
		Dur("elapsed", time.Since(start))
	if n := len(m.Diagnostics()); n > 0 {
		ev = ev.Int("diagnostics", n)
	}
	ev.Msg("recognized")
	return m, nil
}
