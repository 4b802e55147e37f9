package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
	"github.com/ironsheep/mockup-tools-mcp/internal/model"
	"github.com/ironsheep/mockup-tools-mcp/internal/pattern"
	"github.com/ironsheep/mockup-tools-mcp/internal/segment"
)

// Side is where a label sits relative to its control.
type Side string

const (
	SideLeft  Side = "left"
	SideAbove Side = "above"
	SideRight Side = "right"
	SideBelow Side = "below"
)

// Options tune hierarchy building.
type Options struct {
	// Tolerance grows a candidate parent's box before the containment test.
	Tolerance int

	// Gap is the widest blank run between adjacent components.
	Gap int

	// LabelSides lists where labels are looked for, in preference order.
	LabelSides []Side

	// ControlTypes are the component types that can be labeled.
	ControlTypes []string

	// LabelType is the component type that can label a control.
	LabelType string
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Tolerance:    0,
		Gap:          2,
		LabelSides:   []Side{SideLeft, SideAbove},
		ControlTypes: []string{"button", "checkbox", "radio", "textfield", "dropdown"},
		LabelType:    "text",
	}
}

// CycleError reports a containment link dropped because it would make a
// component its own ancestor.
type CycleError struct {
	Child  int
	Parent int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("hierarchy: placing component %d under %d would create a cycle", e.Child, e.Parent)
}

// Unwrap lets errors.Is match model.ErrCycle.
func (e *CycleError) Unwrap() error { return model.ErrCycle }

// Builder turns candidates and their matches into a frozen model.
type Builder struct {
	opts     Options
	controls map[string]bool
}

// New creates a builder.
func New(opts Options) *Builder {
	if opts.Gap < 0 {
		opts.Gap = 0
	}
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	}
	controls := make(map[string]bool, len(opts.ControlTypes))
	for _, t := range opts.ControlTypes {
		controls[t] = true
	}
	return &Builder{opts: opts, controls: controls}
}

// Build creates the model. matches[i] is the match of cands[i], or nil. The
// candidate at index i must have ID i. Cycles and rejected properties are
// recorded as diagnostics; only malformed input is an error.
func (hb *Builder) Build(cands []segment.Candidate, matches []*pattern.Match) (*model.ComponentModel, error) {
	if len(matches) != len(cands) {
		return nil, fmt.Errorf("hierarchy: %d matches for %d candidates", len(matches), len(cands))
	}
	mb := model.NewBuilder()
	for i, c := range cands {
		if c.ID != i {
			return nil, fmt.Errorf("hierarchy: candidate at index %d has ID %d", i, c.ID)
		}
		id := mb.Add(c.Box, c.Content, c.Kind == segment.KindBox)
		if c.Frame != nil {
			if err := mb.SetFrame(id, c.Frame); err != nil {
				return nil, fmt.Errorf("hierarchy: %w", err)
			}
		}
	}

	for i, m := range matches {
		if err := applyMatch(mb, i, m); err != nil {
			return nil, err
		}
	}
	hb.contain(mb, cands)
	hb.relate(mb, cands)
	return mb.Freeze(), nil
}

func applyMatch(mb *model.Builder, id int, m *pattern.Match) error {
	if m == nil {
		mb.Diagnose(model.DiagUnclassified, id, "no pattern matched component %d", id)
		return nil
	}
	if err := mb.Classify(id, m.Type, m.PatternID, m.Confidence); err != nil {
		return fmt.Errorf("hierarchy: %w", err)
	}
	keys := make([]string, 0, len(m.Properties))
	for k := range m.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mb.SetProperty(id, k, m.Properties[k]); err != nil {
			mb.DiagnoseErr(model.DiagInvalidProperty, id, err)
		}
	}
	return nil
}

// byArea orders candidate indices by area, then ID.
func byArea(cands []segment.Candidate) []int {
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ra, rb := cands[order[a]].Box.Area(), cands[order[b]].Box.Area()
		if ra != rb {
			return ra < rb
		}
		return order[a] < order[b]
	})
	return order
}

// contain links every candidate under its tightest enclosing candidate.
func (hb *Builder) contain(mb *model.Builder, cands []segment.Candidate) {
	order := byArea(cands)
	rank := make([]int, len(cands))
	for r, id := range order {
		rank[id] = r
	}

	for _, child := range order {
		box := cands[child].Box
		var parents []int
		for _, p := range order {
			if p == child {
				continue
			}
			pb := cands[p].Box
			if pb.Area() < box.Area() || !pb.Expand(hb.opts.Tolerance).Contains(box) {
				continue
			}
			parents = append(parents, p)
		}
		// order is already area-then-ID, so parents is tightest first.
		for _, p := range parents {
			err := mb.SetParent(child, p)
			if err == nil {
				break
			}
			mb.DiagnoseErr(model.DiagHierarchyCycle, child, &CycleError{Child: child, Parent: p})
		}
	}
}

// relate adds adjacency and label edges among siblings.
func (hb *Builder) relate(mb *model.Builder, cands []segment.Candidate) {
	groups := make(map[int][]int)
	var parents []int
	for i := range cands {
		c, _ := mb.Get(i)
		if _, seen := groups[c.Parent]; !seen {
			parents = append(parents, c.Parent)
		}
		groups[c.Parent] = append(groups[c.Parent], i)
	}
	sort.Ints(parents)

	var pairs []labelPair
	for _, p := range parents {
		sib := groups[p]
		for x := 0; x < len(sib); x++ {
			for y := x + 1; y < len(sib); y++ {
				a, b := sib[x], sib[y]
				hb.adjacent(mb, cands, sib, a, b)
			}
		}
		pairs = append(pairs, hb.labelCandidates(mb, sib)...)
	}
	hb.assignLabels(mb, pairs)
}

// adjacent records both directions when a and b are neighbours with no
// other sibling between them.
func (hb *Builder) adjacent(mb *model.Builder, cands []segment.Candidate, sib []int, a, b int) {
	ra, rb := cands[a].Box, cands[b].Box
	gx, gy := ra.GapX(rb), ra.GapY(rb)
	ax, ay := ra.Center2()
	bx, by := rb.Center2()

	switch {
	case gy < 0 && gx >= 0 && gx <= hb.opts.Gap:
		if bx < ax {
			a, b = b, a
		}
		if occluded(cands, sib, a, b, between(cands[a].Box, cands[b].Box, true)) {
			return
		}
		link(mb, a, model.AdjacentRight, b)
		link(mb, b, model.AdjacentLeft, a)
	case gx < 0 && gy >= 0 && gy <= hb.opts.Gap:
		if by < ay {
			a, b = b, a
		}
		if occluded(cands, sib, a, b, between(cands[a].Box, cands[b].Box, false)) {
			return
		}
		link(mb, a, model.AdjacentBelow, b)
		link(mb, b, model.AdjacentAbove, a)
	}
}

// between is the strip separating first from second: the gap along the
// layout axis times the overlap along the other. It is empty when they touch.
func between(first, second grid.Rect, horizontal bool) grid.Rect {
	if horizontal {
		return grid.Rect{
			MinX: first.MaxX + 1, MaxX: second.MinX - 1,
			MinY: max(first.MinY, second.MinY), MaxY: min(first.MaxY, second.MaxY),
		}
	}
	return grid.Rect{
		MinX: max(first.MinX, second.MinX), MaxX: min(first.MaxX, second.MaxX),
		MinY: first.MaxY + 1, MaxY: second.MinY - 1,
	}
}

// occluded reports whether a sibling other than a and b reaches into strip.
func occluded(cands []segment.Candidate, sib []int, a, b int, strip grid.Rect) bool {
	if strip.Empty() {
		return false
	}
	for _, o := range sib {
		if o == a || o == b {
			continue
		}
		if cands[o].Box.GapX(strip) < 0 && cands[o].Box.GapY(strip) < 0 {
			return true
		}
	}
	return false
}

// link adds an edge, recording a diagnostic if the builder refuses it.
func link(mb *model.Builder, from int, kind model.Relation, to int) {
	if err := mb.Relate(from, kind, to); err != nil {
		mb.DiagnoseErr(model.DiagInvalidRelation, from, err)
	}
}

type labelPair struct {
	control, label int
	gap, side      int
}

// sideRelation is the edge a control carries towards a label on that side.
var sideRelation = map[Side]model.Relation{
	SideLeft:  model.AdjacentLeft,
	SideRight: model.AdjacentRight,
	SideAbove: model.AdjacentAbove,
	SideBelow: model.AdjacentBelow,
}

func (hb *Builder) labelCandidates(mb *model.Builder, sib []int) []labelPair {
	var out []labelPair
	for _, ctl := range sib {
		c, _ := mb.Get(ctl)
		if !hb.controls[c.Type] {
			continue
		}
		for _, lbl := range sib {
			l, _ := mb.Get(lbl)
			if l.Type != hb.opts.LabelType || l.Bordered {
				continue
			}
			for rank, side := range hb.opts.LabelSides {
				rel, ok := sideRelation[side]
				if !ok || !mb.Has(ctl, rel, lbl) {
					continue
				}
				gap := c.Box.GapX(l.Box)
				if side == SideAbove || side == SideBelow {
					gap = c.Box.GapY(l.Box)
				}
				out = append(out, labelPair{control: ctl, label: lbl, gap: gap, side: rank})
				break
			}
		}
	}
	return out
}

// assignLabels pairs controls and labels greedily, nearest first.
func (hb *Builder) assignLabels(mb *model.Builder, pairs []labelPair) {
	sort.Slice(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.gap != b.gap {
			return a.gap < b.gap
		}
		if a.side != b.side {
			return a.side < b.side
		}
		if a.control != b.control {
			return a.control < b.control
		}
		return a.label < b.label
	})

	usedCtl := make(map[int]bool)
	usedLbl := make(map[int]bool)
	for _, p := range pairs {
		if usedCtl[p.control] || usedLbl[p.label] {
			continue
		}
		usedCtl[p.control], usedLbl[p.label] = true, true
		link(mb, p.control, model.LabeledBy, p.label)
		link(mb, p.label, model.LabelFor, p.control)

		ctl, _ := mb.Get(p.control)
		if _, has := ctl.Property("label"); has {
			continue
		}
		if text := labelText(mb, p.label); text != "" {
			if err := mb.SetProperty(p.control, "label", text); err != nil {
				mb.DiagnoseErr(model.DiagInvalidProperty, p.control, err)
			}
		}
	}
}

func labelText(mb *model.Builder, id int) string {
	l, _ := mb.Get(id)
	text, ok := l.Property("text")
	if !ok {
		text = strings.Join(l.Content, " ")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, ":"))
}
