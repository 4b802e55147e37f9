package model

import (
	"encoding/json"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

// Unclassified is the type of components no pattern accepted.
const Unclassified = "unclassified"

// NoParent marks a root component.
const NoParent = -1

// Relation names a relationship kind.
type Relation string

const (
	AdjacentRight Relation = "adjacent:right"
	AdjacentLeft  Relation = "adjacent:left"
	AdjacentAbove Relation = "adjacent:above"
	AdjacentBelow Relation = "adjacent:below"
	LabeledBy     Relation = "labeled_by"
	LabelFor      Relation = "label_for"
)

// Relationship is an outgoing edge of a component.
type Relationship struct {
	Kind   Relation `json:"kind"`
	Target int      `json:"target"`
}

// Edge is a relationship with its source.
type Edge struct {
	From int      `json:"from"`
	Kind Relation `json:"kind"`
	To   int      `json:"to"`
}

// Component is one recognized element.
type Component struct {
	ID      int       `json:"id"`
	Type    string    `json:"type"`
	Box     grid.Rect `json:"box"`
	Content []string  `json:"content"`

	// Bordered is set for components segmented from a drawn box.
	Bordered bool `json:"bordered"`

	// Frame is the drawn outline of a bordered component, interior blanked.
	Frame []string `json:"frame,omitempty"`

	Confidence float64 `json:"confidence"`
	PatternID  string  `json:"pattern_id,omitempty"`

	Properties map[string]string `json:"properties,omitempty"`
	Extensions map[string]string `json:"extensions,omitempty"`

	Parent        int            `json:"parent"`
	Children      []int          `json:"children,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

func (c Component) clone() Component {
	c.Content = append([]string(nil), c.Content...)
	c.Frame = append([]string(nil), c.Frame...)
	c.Children = append([]int(nil), c.Children...)
	c.Relationships = append([]Relationship(nil), c.Relationships...)
	c.Properties = cloneMap(c.Properties)
	c.Extensions = cloneMap(c.Extensions)
	return c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Property returns a schema property, falling back to extensions.
func (c Component) Property(key string) (string, bool) {
	if v, ok := c.Properties[key]; ok {
		return v, true
	}
	v, ok := c.Extensions[key]
	return v, ok
}

// DiagnosticKind classifies a non-fatal defect.
type DiagnosticKind string

const (
	DiagUnclassified    DiagnosticKind = "unclassified"
	DiagHierarchyCycle  DiagnosticKind = "hierarchy_cycle"
	DiagInvalidProperty DiagnosticKind = "invalid_property"
	DiagInvalidRelation DiagnosticKind = "invalid_relation"
)

// Diagnostic is a non-fatal defect found while building the model.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Component int            `json:"component"`
	Message   string         `json:"message"`

	// Err is the underlying error, when there is one.
	Err error `json:"-"`
}

// ComponentModel is the frozen component forest. All methods return copies.
type ComponentModel struct {
	components  []Component
	roots       []int
	byType      map[string][]int
	diagnostics []Diagnostic
	extent      grid.Rect
}

// Len returns the number of components.
func (m *ComponentModel) Len() int { return len(m.components) }

// Component looks up a component by ID.
func (m *ComponentModel) Component(id int) (Component, bool) {
	if id < 0 || id >= len(m.components) {
		return Component{}, false
	}
	return m.components[id].clone(), true
}

// Components returns every component in ID order.
func (m *ComponentModel) Components() []Component {
	out := make([]Component, len(m.components))
	for i, c := range m.components {
		out[i] = c.clone()
	}
	return out
}

// Extent is the union of all component boxes, extended to the origin. It is
// empty for a model without components.
func (m *ComponentModel) Extent() grid.Rect { return m.extent }

// Roots returns the components without a parent in reading order.
func (m *ComponentModel) Roots() []Component {
	return m.list(m.roots)
}

// RootIDs returns the IDs of Roots.
func (m *ComponentModel) RootIDs() []int {
	return append([]int(nil), m.roots...)
}

// Children returns a component's children in reading order.
func (m *ComponentModel) Children(id int) []Component {
	if id < 0 || id >= len(m.components) {
		return nil
	}
	return m.list(m.components[id].Children)
}

// ByType returns components of one type in ID order.
func (m *ComponentModel) ByType(typ string) []Component {
	return m.list(m.byType[typ])
}

// Types lists the types present, with their counts.
func (m *ComponentModel) Types() map[string]int {
	out := make(map[string]int, len(m.byType))
	for t, ids := range m.byType {
		out[t] = len(ids)
	}
	return out
}

// Relationships returns the outgoing relationships of a component.
func (m *ComponentModel) Relationships(id int) []Relationship {
	if id < 0 || id >= len(m.components) {
		return nil
	}
	return append([]Relationship(nil), m.components[id].Relationships...)
}

// Edges returns every relationship, ordered by source ID.
func (m *ComponentModel) Edges() []Edge {
	var out []Edge
	for _, c := range m.components {
		for _, r := range c.Relationships {
			out = append(out, Edge{From: c.ID, Kind: r.Kind, To: r.Target})
		}
	}
	return out
}

// Ancestors returns the parent chain of a component, nearest first.
func (m *ComponentModel) Ancestors(id int) []int {
	if id < 0 || id >= len(m.components) {
		return nil
	}
	var out []int
	for p := m.components[id].Parent; p != NoParent; p = m.components[p].Parent {
		out = append(out, p)
	}
	return out
}

// Diagnostics returns the recorded defects.
func (m *ComponentModel) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), m.diagnostics...)
}

// Walk visits the forest depth-first in reading order. Returning false from
// fn skips the component's children.
func (m *ComponentModel) Walk(fn func(c Component, depth int) bool) {
	var visit func(id, depth int)
	visit = func(id, depth int) {
		c := m.components[id]
		if !fn(c.clone(), depth) {
			return
		}
		for _, child := range c.Children {
			visit(child, depth+1)
		}
	}
	for _, r := range m.roots {
		visit(r, 0)
	}
}

func (m *ComponentModel) list(ids []int) []Component {
	out := make([]Component, len(ids))
	for i, id := range ids {
		out[i] = m.components[id].clone()
	}
	return out
}

// MarshalJSON encodes the whole model.
func (m *ComponentModel) MarshalJSON() ([]byte, error) {
	roots := m.roots
	if roots == nil {
		roots = []int{}
	}
	return json.Marshal(struct {
		Components  []Component  `json:"components"`
		Roots       []int        `json:"roots"`
		Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	}{m.components, roots, m.diagnostics})
}
