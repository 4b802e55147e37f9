package pattern

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/mockup-tools-mcp/internal/features"
	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// DefaultMinConfidence is the acceptance threshold used when none is set.
const DefaultMinConfidence = 0.5

// Options tune matching.
type Options struct {
	// MinConfidence discards matches scoring below it.
	MinConfidence float64

	// Workers bounds concurrent candidates. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the standard matching options.
func DefaultOptions() Options {
	return Options{MinConfidence: DefaultMinConfidence}
}

// Interpreter evaluates a registry's patterns against feature vectors.
type Interpreter struct {
	reg  *Registry
	opts Options
}

// NewInterpreter creates an interpreter over reg.
func NewInterpreter(reg *Registry, opts Options) *Interpreter {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Interpreter{reg: reg, opts: opts}
}

// Match returns the best match per vector. Result i belongs to vecs[i] and is
// nil when the candidate stays unclassified. The registry is read once at the
// start; patterns registered during the run are not seen.
func (in *Interpreter) Match(ctx context.Context, glyphs *grid.Glyphs, vecs []features.Vector) ([]*Match, error) {
	entries := in.reg.snapshot()
	out := make([]*Match, len(vecs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.opts.Workers)
	for i := range vecs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = in.best(entries, Subject{Vector: &vecs[i], Glyphs: glyphs})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pattern: match: %w", err)
	}
	return out, nil
}

// best picks the highest confidence, then the latest registration, then the
// smallest ID.
func (in *Interpreter) best(entries []entry, s Subject) *Match {
	var (
		win    *Match
		winSeq = -1
	)
	for _, e := range entries {
		m, ok := e.pattern.Evaluate(s)
		if !ok || m.Confidence < in.opts.MinConfidence {
			continue
		}
		if win == nil || better(m, e.seq, *win, winSeq) {
			m := m
			win, winSeq = &m, e.seq
		}
	}
	return win
}

func better(m Match, seq int, cur Match, curSeq int) bool {
	if m.Confidence != cur.Confidence {
		return m.Confidence > cur.Confidence
	}
	if seq != curSeq {
		return seq > curSeq
	}
	return m.PatternID < cur.PatternID
}
