// Package contexts models the situational attributes permission data can be
// scoped to, like the world a player is in or the address they joined with.
package contexts

import (
	"slices"
	"strings"
)

// Value is a single context, e.g. world=nether.
type Value struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// V is shorthand for Value{Key: key, Value: value}.
func V(key, value string) Value { return Value{Key: key, Value: value} }

func (v Value) String() string { return v.Key + "=" + v.Value }

func compare(a, b Value) int {
	if c := strings.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	return strings.Compare(a.Value, b.Value)
}

// Set is an immutable, sorted set of context values.
// The zero value is the empty (global) set.
type Set struct {
	values []Value
}

// NewSet returns a Set of values with duplicates removed.
func NewSet(values ...Value) Set {
	if len(values) == 0 {
		return Set{}
	}
	v := slices.Clone(values)
	slices.SortFunc(v, compare)
	return Set{values: slices.Compact(v)}
}

// Values returns a copy of the values in canonical order.
func (s Set) Values() []Value { return slices.Clone(s.values) }

// Len returns the number of values.
func (s Set) Len() int { return len(s.values) }

// Empty reports whether s is the global set.
func (s Set) Empty() bool { return len(s.values) == 0 }

// Contains reports whether v is in s.
func (s Set) Contains(v Value) bool {
	_, ok := slices.BinarySearchFunc(s.values, v, compare)
	return ok
}

// Get returns all values of s with the given key.
func (s Set) Get(key string) []string {
	var out []string
	for _, v := range s.values {
		if v.Key == key {
			out = append(out, v.Value)
		}
	}
	return out
}

// With returns a new Set with values added.
func (s Set) With(values ...Value) Set {
	return NewSet(append(s.Values(), values...)...)
}

// Equal reports whether both sets hold the same values.
func (s Set) Equal(o Set) bool { return slices.Equal(s.values, o.values) }

// Key returns a canonical string usable as a map key.
func (s Set) Key() string {
	var b strings.Builder
	for _, v := range s.values {
		b.WriteString(v.Key)
		b.WriteByte(0)
		b.WriteString(v.Value)
		b.WriteByte(0)
	}
	return b.String()
}

func (s Set) String() string {
	parts := make([]string, len(s.values))
	for i, v := range s.values {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
