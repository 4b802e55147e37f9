package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

var (
	// ErrUnknownComponent is returned for IDs outside the arena.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrCycle is returned when a parent link would make a component its own
	// ancestor.
	ErrCycle = errors.New("containment cycle")

	// ErrFrozen is returned by writes after Freeze.
	ErrFrozen = errors.New("model is frozen")
)

// Builder assembles a ComponentModel. It is not safe for concurrent use.
type Builder struct {
	comps       []Component
	diagnostics []Diagnostic
	frozen      bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends an unclassified root component and returns its ID.
func (b *Builder) Add(box grid.Rect, content []string, bordered bool) int {
	id := len(b.comps)
	b.comps = append(b.comps, Component{
		ID:       id,
		Type:     Unclassified,
		Box:      box,
		Content:  append([]string(nil), content...),
		Bordered: bordered,
		Parent:   NoParent,
	})
	return id
}

// Len returns the number of components added.
func (b *Builder) Len() int { return len(b.comps) }

// Get returns a copy of a component under construction.
func (b *Builder) Get(id int) (Component, bool) {
	if !b.valid(id) {
		return Component{}, false
	}
	return b.comps[id].clone(), true
}

func (b *Builder) valid(id int) bool { return id >= 0 && id < len(b.comps) }

func (b *Builder) check(ids ...int) error {
	if b.frozen {
		return ErrFrozen
	}
	for _, id := range ids {
		if !b.valid(id) {
			return fmt.Errorf("%w: %d", ErrUnknownComponent, id)
		}
	}
	return nil
}

// SetFrame stores the drawn outline of a bordered component. The frame must
// have the component box's dimensions.
func (b *Builder) SetFrame(id int, frame []string) error {
	if err := b.check(id); err != nil {
		return err
	}
	c := &b.comps[id]
	if !c.Bordered {
		return fmt.Errorf("component %d has no border", id)
	}
	if len(frame) != c.Box.Height() {
		return fmt.Errorf("component %d: frame has %d lines, box is %d high", id, len(frame), c.Box.Height())
	}
	for i, l := range frame {
		if n := len([]rune(l)); n != c.Box.Width() {
			return fmt.Errorf("component %d: frame line %d is %d wide, box is %d", id, i, n, c.Box.Width())
		}
	}
	c.Frame = append([]string(nil), frame...)
	return nil
}

// Classify sets the type and score of a component.
func (b *Builder) Classify(id int, typ, patternID string, confidence float64) error {
	if err := b.check(id); err != nil {
		return err
	}
	c := &b.comps[id]
	c.Type, c.PatternID, c.Confidence = typ, patternID, confidence
	return nil
}

// SetProperty writes a property. Keys in the type's schema are validated;
// others land in Extensions. An invalid value is not stored.
func (b *Builder) SetProperty(id int, key, value string) error {
	if err := b.check(id); err != nil {
		return err
	}
	c := &b.comps[id]
	if s, ok := schemas[c.Type]; ok {
		known, err := s.validate(key, value)
		if err != nil {
			return fmt.Errorf("component %d (%s): %w", id, c.Type, err)
		}
		if known {
			if c.Properties == nil {
				c.Properties = make(map[string]string)
			}
			c.Properties[key] = value
			return nil
		}
	}
	if c.Extensions == nil {
		c.Extensions = make(map[string]string)
	}
	c.Extensions[key] = value
	return nil
}

// SetParent links child under parent. It fails with ErrCycle when parent is
// child or one of its descendants.
func (b *Builder) SetParent(child, parent int) error {
	if err := b.check(child, parent); err != nil {
		return err
	}
	for p := parent; p != NoParent; p = b.comps[p].Parent {
		if p == child {
			return fmt.Errorf("%w: %d under %d", ErrCycle, child, parent)
		}
	}
	c := &b.comps[child]
	if c.Parent != NoParent {
		old := &b.comps[c.Parent]
		for i, id := range old.Children {
			if id == child {
				old.Children = append(old.Children[:i], old.Children[i+1:]...)
				break
			}
		}
	}
	c.Parent = parent
	b.comps[parent].Children = append(b.comps[parent].Children, child)
	return nil
}

// Relate adds an edge from one component to another. Duplicates are ignored.
func (b *Builder) Relate(from int, kind Relation, to int) error {
	if err := b.check(from, to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("component %d cannot relate to itself", from)
	}
	c := &b.comps[from]
	for _, r := range c.Relationships {
		if r.Kind == kind && r.Target == to {
			return nil
		}
	}
	c.Relationships = append(c.Relationships, Relationship{Kind: kind, Target: to})
	return nil
}

// Has reports whether the edge exists.
func (b *Builder) Has(from int, kind Relation, to int) bool {
	if !b.valid(from) {
		return false
	}
	for _, r := range b.comps[from].Relationships {
		if r.Kind == kind && r.Target == to {
			return true
		}
	}
	return false
}

// Diagnose records a defect.
func (b *Builder) Diagnose(kind DiagnosticKind, id int, format string, args ...any) {
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Kind:      kind,
		Component: id,
		Message:   fmt.Sprintf(format, args...),
	})
}

// DiagnoseErr records a defect caused by err.
func (b *Builder) DiagnoseErr(kind DiagnosticKind, id int, err error) {
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Kind:      kind,
		Component: id,
		Message:   err.Error(),
		Err:       err,
	})
}

// Freeze orders children and roots by reading order (top, then left, then
// ID), sorts relationships and returns the read-only model. The builder
// rejects writes afterwards.
func (b *Builder) Freeze() *ComponentModel {
	b.frozen = true
	comps := make([]Component, len(b.comps))
	for i, c := range b.comps {
		comps[i] = c.clone()
	}

	less := func(ids []int) func(i, j int) bool {
		return func(i, j int) bool {
			a, c := comps[ids[i]].Box, comps[ids[j]].Box
			if a.MinY != c.MinY {
				return a.MinY < c.MinY
			}
			if a.MinX != c.MinX {
				return a.MinX < c.MinX
			}
			return ids[i] < ids[j]
		}
	}

	m := &ComponentModel{
		components:  comps,
		byType:      make(map[string][]int),
		diagnostics: append([]Diagnostic(nil), b.diagnostics...),
		extent:      grid.Rect{MaxX: -1, MaxY: -1},
	}
	for i := range comps {
		c := &comps[i]
		sort.Slice(c.Children, less(c.Children))
		sort.Slice(c.Relationships, func(x, y int) bool {
			rx, ry := c.Relationships[x], c.Relationships[y]
			if rx.Kind != ry.Kind {
				return rx.Kind < ry.Kind
			}
			return rx.Target < ry.Target
		})
		if c.Parent == NoParent {
			m.roots = append(m.roots, c.ID)
		}
		m.extent = m.extent.Union(grid.Rect{MaxX: c.Box.MaxX, MaxY: c.Box.MaxY})
		m.byType[c.Type] = append(m.byType[c.Type], c.ID)
	}
	sort.Slice(m.roots, less(m.roots))
	return m
}
