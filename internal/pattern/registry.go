package pattern

import (
	"fmt"
	"sync"
)

// Registry is the table of patterns available to an Interpreter. It is
// append-only: patterns are never replaced or removed, and registration order
// is kept for tie-breaking.
//
// A Registry is constructed explicitly and passed to whatever needs it. It is
// safe for concurrent use.
//
// # Example Usage
//
//	reg := pattern.NewRegistry()
//	if err := pattern.LoadBuiltin(reg); err != nil {
//	    return err
//	}
//	if _, err := reg.Load("custom.pat", src); err != nil {
//	    return err // *DefinitionError with line and column
//	}
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

type entry struct {
	pattern Pattern
	seq     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register appends patterns in order. Either all are registered or, when any
// ID is empty or already present, none are.
func (r *Registry) Register(ps ...Pattern) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(ps))
	for _, p := range ps {
		id := p.ID()
		if id == "" {
			return fmt.Errorf("pattern: empty pattern ID")
		}
		if _, ok := r.byID[id]; ok || batch[id] {
			return fmt.Errorf("pattern: %q: %w", id, ErrDuplicatePattern)
		}
		batch[id] = true
	}
	for _, p := range ps {
		r.byID[p.ID()] = len(r.entries)
		r.entries = append(r.entries, entry{pattern: p, seq: len(r.entries)})
	}
	return nil
}

// Load parses a pattern source and registers every pattern in it.
func (r *Registry) Load(name, text string) ([]Pattern, error) {
	rules, err := Parse(name, text)
	if err != nil {
		return nil, err
	}
	ps := make([]Pattern, len(rules))
	for i, rl := range rules {
		ps[i] = rl
	}
	if err := r.Register(ps...); err != nil {
		return nil, err
	}
	return ps, nil
}

// Lookup returns a pattern by ID.
func (r *Registry) Lookup(id string) (Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return r.entries[i].pattern, true
}

// Patterns lists registered patterns in registration order.
func (r *Registry) Patterns() []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pattern, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.pattern
	}
	return out
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// snapshot copies the entry list so a matching run sees a fixed table.
func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entry(nil), r.entries...)
}
