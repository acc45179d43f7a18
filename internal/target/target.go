// internal/target/target.go
package target

import (
	"sort"
)

// Target identifies a build platform whose configuration may be overridden
// independently of the default.
type Target string

// Default is the reserved "unspecified" target. Lookups for it always hit
// the default slot of a MultiTarget, never an override.
const Default Target = ""

func (t Target) String() string {
	if t == Default {
		return "default"
	}
	return string(t)
}

// MultiTarget holds one default value plus sparse per-target overrides.
// A lookup for any target yields its override if present, else the default.
type MultiTarget[V any] struct {
	DefaultValue V            `json:"default"`
	Overrides    map[Target]V `json:"overrides,omitempty"`
}

func New[V any](defaultValue V) *MultiTarget[V] {
	return &MultiTarget[V]{
		DefaultValue: defaultValue,
		Overrides:    make(map[Target]V),
	}
}

// Get returns the override for t, or the default when t has none.
func (m *MultiTarget[V]) Get(t Target) V {
	if v, ok := m.Overrides[t]; ok && t != Default {
		return v
	}
	return m.DefaultValue
}

// Set stores v as the override for t. Setting Default writes the default slot.
func (m *MultiTarget[V]) Set(t Target, v V) {
	if t == Default {
		m.DefaultValue = v
		return
	}
	if m.Overrides == nil {
		m.Overrides = make(map[Target]V)
	}
	m.Overrides[t] = v
}

// Remove deletes the override for t so lookups fall back to the default.
func (m *MultiTarget[V]) Remove(t Target) {
	delete(m.Overrides, t)
}

func (m *MultiTarget[V]) HasOverride(t Target) bool {
	if t == Default {
		return false
	}
	_, ok := m.Overrides[t]
	return ok
}

// Targets lists the overridden targets in sorted order.
func (m *MultiTarget[V]) Targets() []Target {
	targets := make([]Target, 0, len(m.Overrides))
	for t := range m.Overrides {
		targets = append(targets, t)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// Clone returns an independent copy.
func (m *MultiTarget[V]) Clone() *MultiTarget[V] {
	c := New(m.DefaultValue)
	for t, v := range m.Overrides {
		c.Overrides[t] = v
	}
	return c
}
