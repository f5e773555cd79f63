package model

import "fmt"

// MissingPattern records an access pattern that could not be given a secondary
// index because the index budget was exhausted. The schema is still produced;
// the operator decides whether the gap is acceptable.
type MissingPattern struct {
	Entity string
	Kind   string // relationship kind, "unique", or "sparse"
	Target string // related entity or attribute name
	Reason string
}

func (m MissingPattern) String() string {
	return fmt.Sprintf("%s:%s:%s (%s)", m.Entity, m.Kind, m.Target, m.Reason)
}

// Registry is the in-memory catalog of entity descriptors for one compilation.
// It owns the shared secondary-index assignment table and the accumulating
// warning list. A registry is built once, mutated only during compilation, and
// read-only afterward. Independent compilations must use independent registries.
type Registry struct {
	entities map[string]*EntityDescriptor
	order    []string

	assignments map[string]int // assignment key -> index number
	nextIndex   int            // highest index number handed out so far

	warnings []string
	missing  []MissingPattern
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:    make(map[string]*EntityDescriptor),
		assignments: make(map[string]int),
	}
}

// Add registers an entity descriptor. Re-registering a name replaces the
// previous descriptor and keeps its original position in declaration order.
func (r *Registry) Add(e *EntityDescriptor) {
	if e.TypePrefix == "" {
		e.TypePrefix = DefaultTypePrefix(e.Name)
	}
	if _, exists := r.entities[e.Name]; !exists {
		r.order = append(r.order, e.Name)
	}
	r.entities[e.Name] = e
}

// Get returns the descriptor for name, or nil if not registered.
func (r *Registry) Get(name string) *EntityDescriptor {
	return r.entities[name]
}

// Entities returns all descriptors in declaration order.
func (r *Registry) Entities() []*EntityDescriptor {
	out := make([]*EntityDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entities[name])
	}
	return out
}

// Len returns the number of registered entities.
func (r *Registry) Len() int { return len(r.order) }

// Assign hands out the next free secondary index number for the given
// assignment key, bounded by max. Assignment is idempotent: a key that was
// already assigned gets its previous number back without consuming a new slot.
// Returns (0, false) once the budget is exhausted.
func (r *Registry) Assign(key string, max int) (int, bool) {
	if n, ok := r.assignments[key]; ok {
		return n, true
	}
	if r.nextIndex >= max {
		return 0, false
	}
	r.nextIndex++
	r.assignments[key] = r.nextIndex
	return r.nextIndex, true
}

// Assignment returns the index number recorded for key, or 0 if none.
func (r *Registry) Assignment(key string) int {
	return r.assignments[key]
}

// Assignments returns a copy of the assignment table for reporting.
func (r *Registry) Assignments() map[string]int {
	out := make(map[string]int, len(r.assignments))
	for k, v := range r.assignments {
		out[k] = v
	}
	return out
}

// AssignedCount returns how many index slots have been consumed.
func (r *Registry) AssignedCount() int { return r.nextIndex }

// SetIndexFloor fast-forwards the slot counter to at least n. Derivers that
// share the index budget but run against a registry whose earlier slots were
// allocated elsewhere use this to avoid colliding with them.
func (r *Registry) SetIndexFloor(n int) {
	if n > r.nextIndex {
		r.nextIndex = n
	}
}

// Warnf appends a formatted warning. Warnings are diagnostics, not errors:
// compilation always runs to completion.
func (r *Registry) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns the accumulated warnings in emission order.
func (r *Registry) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// AddMissing records an access pattern that could not be satisfied.
func (r *Registry) AddMissing(m MissingPattern) {
	r.missing = append(r.missing, m)
}

// Missing returns the accumulated missing-pattern entries.
func (r *Registry) Missing() []MissingPattern {
	return append([]MissingPattern(nil), r.missing...)
}

// AssignmentKey builds the canonical assignment table key for a relationship
// or attribute lookup, e.g. "Post:belongsTo:User" or "User:unique:email".
func AssignmentKey(entity, kind, target string) string {
	return entity + ":" + kind + ":" + target
}
