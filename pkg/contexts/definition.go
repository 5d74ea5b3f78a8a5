package contexts

import (
	"fmt"
	"slices"
	"strconv"
)

// Subject is a permission subject as seen by context definitions.
type Subject interface {
	// Associated returns the host object the subject represents
	// (e.g. an online player), or nil if there is none.
	Associated() any
}

// Definition defines how values of one context key are parsed, compared
// and derived from a subject.
type Definition[T any] interface {
	Name() string // The context key.
	Serialize(T) string
	Deserialize(string) (T, error)
	// Matches reports whether a stored value own applies to an active value test.
	Matches(own, test T) bool
	// AccumulateFromSubject calls fn for each value currently active for the subject.
	AccumulateFromSubject(s Subject, fn func(T))
	// SuggestValues returns values a user may want to use for the subject.
	SuggestValues(s Subject) []T
}

// SourceDefinition is a Definition that can also derive values from a
// host command source (a player, the console, a command block).
type SourceDefinition[T any] interface {
	Definition[T]
	AccumulateFromSource(source any, fn func(T))
}

// AnyDefinition is a type erased Definition working on serialized values.
type AnyDefinition interface {
	Name() string
	// Normalize parses and re-serializes a user supplied value.
	Normalize(value string) (string, error)
	Matches(own, test string) bool
	FromSubject(s Subject) []Value
	FromSource(source any) []Value
	Suggest(s Subject) []string
}

// Erase returns d as an AnyDefinition.
func Erase[T any](d Definition[T]) AnyDefinition { return erased[T]{d} }

type erased[T any] struct{ d Definition[T] }

func (e erased[T]) Name() string { return e.d.Name() }

func (e erased[T]) Normalize(value string) (string, error) {
	v, err := e.d.Deserialize(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s context value %q: %w", e.d.Name(), value, err)
	}
	return e.d.Serialize(v), nil
}

func (e erased[T]) Matches(own, test string) bool {
	o, err := e.d.Deserialize(own)
	if err != nil {
		return false
	}
	t, err := e.d.Deserialize(test)
	if err != nil {
		return false
	}
	return e.d.Matches(o, t)
}

func (e erased[T]) collect(accumulate func(func(T))) []Value {
	var out []Value
	accumulate(func(v T) {
		out = append(out, Value{Key: e.d.Name(), Value: e.d.Serialize(v)})
	})
	return out
}

func (e erased[T]) FromSubject(s Subject) []Value {
	return e.collect(func(fn func(T)) { e.d.AccumulateFromSubject(s, fn) })
}

func (e erased[T]) FromSource(source any) []Value {
	sd, ok := e.d.(SourceDefinition[T])
	if !ok {
		return nil
	}
	return e.collect(func(fn func(T)) { sd.AccumulateFromSource(source, fn) })
}

func (e erased[T]) Suggest(s Subject) []string {
	values := e.d.SuggestValues(s)
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, e.d.Serialize(v))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Registry holds definitions by context key.
type Registry struct {
	defs  map[string]AnyDefinition
	names []string
}

// NewRegistry returns a Registry of defs.
// A later definition replaces an earlier one with the same name.
func NewRegistry(defs ...AnyDefinition) *Registry {
	r := &Registry{defs: make(map[string]AnyDefinition, len(defs))}
	for _, d := range defs {
		if _, ok := r.defs[d.Name()]; !ok {
			r.names = append(r.names, d.Name())
		}
		r.defs[d.Name()] = d
	}
	slices.Sort(r.names)
	return r
}

// Get returns the definition for key, or nil.
func (r *Registry) Get(key string) AnyDefinition { return r.defs[key] }

// Names returns the registered context keys in sorted order.
func (r *Registry) Names() []string { return slices.Clone(r.names) }

// FromSubject returns all values currently active for s.
func (r *Registry) FromSubject(s Subject) Set {
	var out []Value
	for _, name := range r.names {
		out = append(out, r.defs[name].FromSubject(s)...)
	}
	return NewSet(out...)
}

// FromSource returns all values currently active for a command source.
func (r *Registry) FromSource(source any) Set {
	var out []Value
	for _, name := range r.names {
		out = append(out, r.defs[name].FromSource(source)...)
	}
	return NewSet(out...)
}

// Matches reports whether the stored context own applies to the active context test.
// Contexts of unknown keys match on exact equality.
func (r *Registry) Matches(own, test Value) bool {
	if own.Key != test.Key {
		return false
	}
	if d := r.Get(own.Key); d != nil {
		return d.Matches(own.Value, test.Value)
	}
	return own.Value == test.Value
}

// SetMatches reports whether every value of own matches at least one value of active.
func (r *Registry) SetMatches(own, active Set) bool {
next:
	for _, o := range own.values {
		for _, a := range active.values {
			if r.Matches(o, a) {
				continue next
			}
		}
		return false
	}
	return true
}

// Simple is a Definition of plain string values compared by equality.
// It is meant to be embedded by definitions that derive values from a host.
type Simple struct{ Key string }

func (s Simple) Name() string                              { return s.Key }
func (Simple) Serialize(v string) string                   { return v }
func (Simple) Deserialize(v string) (string, error)        { return v, nil }
func (Simple) Matches(own, test string) bool               { return own == test }
func (Simple) AccumulateFromSubject(Subject, func(string)) {}
func (Simple) SuggestValues(Subject) []string              { return nil }

// Int is a Definition of integer values compared by equality.
type Int struct{ Key string }

func (i Int) Name() string                           { return i.Key }
func (Int) Serialize(v int) string                   { return strconv.Itoa(v) }
func (Int) Deserialize(v string) (int, error)        { return strconv.Atoi(v) }
func (Int) Matches(own, test int) bool               { return own == test }
func (Int) AccumulateFromSubject(Subject, func(int)) {}
func (Int) SuggestValues(Subject) []int              { return nil }

var (
	_ Definition[string] = Simple{}
	_ Definition[int]    = Int{}
)
