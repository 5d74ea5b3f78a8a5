package contexts

import "slices"

// Inheritance describes which contexts imply other contexts.
// If world=world_nether has parent world=world, a subject in the nether
// also receives data scoped to world=world.
type Inheritance interface {
	// Parents returns the direct parents of a context.
	Parents(Value) []Value
	// AllParents returns every context with at least one parent.
	AllParents() map[Value][]Value
}

// MapInheritance is an immutable Inheritance backed by a map.
type MapInheritance struct {
	parents map[Value][]Value
}

var _ Inheritance = (*MapInheritance)(nil)

// NewMapInheritance copies parents into a new MapInheritance.
// Duplicate parents of a context are dropped, keeping the first occurrence.
func NewMapInheritance(parents map[Value][]Value) *MapInheritance {
	m := make(map[Value][]Value, len(parents))
	for child, p := range parents {
		var uniq []Value
		for _, v := range p {
			if v != child && !slices.Contains(uniq, v) {
				uniq = append(uniq, v)
			}
		}
		if len(uniq) != 0 {
			m[child] = uniq
		}
	}
	return &MapInheritance{parents: m}
}

func (m *MapInheritance) Parents(v Value) []Value {
	if m == nil {
		return nil
	}
	return slices.Clone(m.parents[v])
}

func (m *MapInheritance) AllParents() map[Value][]Value {
	out := make(map[Value][]Value)
	if m == nil {
		return out
	}
	for k, v := range m.parents {
		out[k] = slices.Clone(v)
	}
	return out
}

// Closure returns active extended by all transitive parents in inh.
// Cycles are tolerated, every context is visited once.
func Closure(inh Inheritance, active Set) Set {
	if inh == nil {
		return active
	}
	queue := active.Values()
	seen := make(map[Value]struct{}, len(queue))
	var out []Value
	for len(queue) != 0 {
		v := queue[0]
		queue = queue[1:]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		queue = append(queue, inh.Parents(v)...)
	}
	return NewSet(out...)
}
