package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/mockup-tools-mcp/internal/grid"
)

func rect(x1, y1, x2, y2 int) grid.Rect {
	return grid.Rect{MinX: x1, MinY: y1, MaxX: x2, MaxY: y2}
}

func TestBuilder_Properties(t *testing.T) {
	b := NewBuilder()
	id := b.Add(rect(0, 0, 5, 0), []string{"[X] On"}, false)
	require.NoError(t, b.Classify(id, "checkbox", "builtin.checkbox", 1))

	require.NoError(t, b.SetProperty(id, "state", "checked"))
	require.NoError(t, b.SetProperty(id, "label", "On"))
	require.NoError(t, b.SetProperty(id, "tooltip", "switch it"))

	err := b.SetProperty(id, "state", "maybe")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProperty))

	c, ok := b.Get(id)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"state": "checked", "label": "On"}, c.Properties)
	assert.Equal(t, map[string]string{"tooltip": "switch it"}, c.Extensions)

	v, ok := c.Property("tooltip")
	assert.True(t, ok)
	assert.Equal(t, "switch it", v)
}

func TestBuilder_UnknownTypeUsesExtensions(t *testing.T) {
	b := NewBuilder()
	id := b.Add(rect(0, 0, 3, 3), nil, true)
	require.NoError(t, b.Classify(id, "slider", "custom.slider", 0.8))
	require.NoError(t, b.SetProperty(id, "min", "0"))

	c, _ := b.Get(id)
	assert.Nil(t, c.Properties)
	assert.Equal(t, "0", c.Extensions["min"])
}

func TestBuilder_RequiredProperty(t *testing.T) {
	b := NewBuilder()
	id := b.Add(rect(0, 0, 3, 2), nil, true)
	require.NoError(t, b.Classify(id, "button", "builtin.button", 1))
	assert.ErrorIs(t, b.SetProperty(id, "label", ""), ErrInvalidProperty)
}

func TestBuilder_SetParentRejectsCycles(t *testing.T) {
	b := NewBuilder()
	a := b.Add(rect(0, 0, 9, 9), nil, true)
	c := b.Add(rect(1, 1, 8, 8), nil, true)
	d := b.Add(rect(2, 2, 7, 7), nil, true)

	require.NoError(t, b.SetParent(c, a))
	require.NoError(t, b.SetParent(d, c))

	assert.ErrorIs(t, b.SetParent(a, d), ErrCycle)
	assert.ErrorIs(t, b.SetParent(a, a), ErrCycle)
	assert.ErrorIs(t, b.SetParent(a, 42), ErrUnknownComponent)

	m := b.Freeze()
	assert.Equal(t, []int{c, a}, m.Ancestors(d))
	assert.Equal(t, []int{a}, m.RootIDs())
}

func TestBuilder_Reparent(t *testing.T) {
	b := NewBuilder()
	outer := b.Add(rect(0, 0, 9, 9), nil, true)
	inner := b.Add(rect(1, 1, 8, 8), nil, true)
	leaf := b.Add(rect(2, 2, 3, 2), nil, false)

	require.NoError(t, b.SetParent(leaf, outer))
	require.NoError(t, b.SetParent(inner, outer))
	require.NoError(t, b.SetParent(leaf, inner))

	m := b.Freeze()
	out, _ := m.Component(outer)
	in, _ := m.Component(inner)
	assert.Equal(t, []int{inner}, out.Children)
	assert.Equal(t, []int{leaf}, in.Children)
}

func TestBuilder_FreezeOrdersReadingOrder(t *testing.T) {
	b := NewBuilder()
	parent := b.Add(rect(0, 0, 20, 5), nil, true)
	right := b.Add(rect(10, 1, 12, 1), nil, false)
	below := b.Add(rect(1, 3, 4, 3), nil, false)
	left := b.Add(rect(1, 1, 4, 1), nil, false)
	for _, id := range []int{right, below, left} {
		require.NoError(t, b.SetParent(id, parent))
	}
	lone := b.Add(rect(0, 7, 3, 7), nil, false)

	require.NoError(t, b.Relate(left, AdjacentRight, right))
	require.NoError(t, b.Relate(left, AdjacentRight, right))
	require.NoError(t, b.Relate(left, AdjacentAbove, below))
	require.Error(t, b.Relate(left, AdjacentRight, left))

	m := b.Freeze()
	p, _ := m.Component(parent)
	assert.Equal(t, []int{left, right, below}, p.Children)
	assert.Equal(t, []int{parent, lone}, m.RootIDs())
	assert.Equal(t, []Relationship{
		{Kind: AdjacentAbove, Target: below},
		{Kind: AdjacentRight, Target: right},
	}, m.Relationships(left))
	assert.Len(t, m.Edges(), 2)

	assert.ErrorIs(t, b.Classify(left, "text", "", 1), ErrFrozen)
}

func TestModel_Queries(t *testing.T) {
	b := NewBuilder()
	w := b.Add(rect(0, 0, 10, 4), []string{"  OK  "}, true)
	ok := b.Add(rect(3, 1, 4, 1), []string{"OK"}, false)
	require.NoError(t, b.Classify(w, "button", "builtin.button", 1))
	require.NoError(t, b.SetProperty(w, "label", "OK"))
	require.NoError(t, b.SetParent(ok, w))
	b.Diagnose(DiagUnclassified, ok, "no pattern matched")
	m := b.Freeze()

	assert.Equal(t, 2, m.Len())
	assert.Len(t, m.ByType("button"), 1)
	assert.Len(t, m.ByType(Unclassified), 1)
	assert.Empty(t, m.ByType("slider"))
	assert.Equal(t, map[string]int{"button": 1, Unclassified: 1}, m.Types())
	assert.Len(t, m.Children(w), 1)

	_, found := m.Component(99)
	assert.False(t, found)
	assert.Nil(t, m.Relationships(-1))

	// returned values are copies
	c, _ := m.Component(w)
	c.Properties["label"] = "changed"
	again, _ := m.Component(w)
	assert.Equal(t, "OK", again.Properties["label"])

	require.Len(t, m.Diagnostics(), 1)
	assert.Equal(t, DiagUnclassified, m.Diagnostics()[0].Kind)

	var depths []int
	m.Walk(func(c Component, depth int) bool {
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []int{0, 1}, depths)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	var decoded struct {
		Components []Component `json:"components"`
		Roots      []int       `json:"roots"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []int{w}, decoded.Roots)
	assert.Equal(t, "button", decoded.Components[0].Type)
}

func TestSchema(t *testing.T) {
	s, ok := SchemaFor("radio")
	require.True(t, ok)
	assert.Equal(t, []string{"selected", "unselected"}, s["state"].Values)

	_, ok = SchemaFor("slider")
	assert.False(t, ok)
	assert.Contains(t, KnownTypes(), "checkbox")
}
