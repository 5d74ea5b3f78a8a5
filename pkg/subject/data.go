package subject

import (
	"maps"
	"slices"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/util/permission"
)

// Segment is the data of a subject that applies in one set of contexts.
type Segment struct {
	Contexts     contexts.Set
	Permissions  map[string]int // positive grants, negative denies
	Parents      []Ref
	Options      map[string]string
	DefaultValue int // value of permissions not set explicitly
}

// Empty reports whether the segment holds no data.
func (s Segment) Empty() bool {
	return len(s.Permissions) == 0 && len(s.Parents) == 0 &&
		len(s.Options) == 0 && s.DefaultValue == 0
}

func (s Segment) clone() Segment {
	return Segment{
		Contexts:     s.Contexts,
		Permissions:  maps.Clone(s.Permissions),
		Parents:      slices.Clone(s.Parents),
		Options:      maps.Clone(s.Options),
		DefaultValue: s.DefaultValue,
	}
}

// Data is the immutable data of a subject split into context segments.
// The zero value holds no data.
type Data struct {
	segments []Segment
	index    map[string]int // contexts.Set.Key -> segments index
}

// NewData returns Data holding copies of segments.
//
// Segments with equal context sets are combined in the given order:
// permissions and options already present are kept, parents are appended
// and the first non-zero default value wins. Empty segments are dropped.
func NewData(segments ...Segment) *Data {
	d := &Data{index: make(map[string]int, len(segments))}
	for _, seg := range segments {
		if seg.Empty() {
			continue
		}
		key := seg.Contexts.Key()
		i, ok := d.index[key]
		if !ok {
			d.index[key] = len(d.segments)
			d.segments = append(d.segments, seg.clone())
			continue
		}
		d.segments[i] = combine(d.segments[i], seg)
	}
	return d
}

func combine(into, from Segment) Segment {
	if into.Permissions == nil && len(from.Permissions) != 0 {
		into.Permissions = make(map[string]int, len(from.Permissions))
	}
	for k, v := range from.Permissions {
		if _, ok := into.Permissions[k]; !ok {
			into.Permissions[k] = v
		}
	}
	if into.Options == nil && len(from.Options) != 0 {
		into.Options = make(map[string]string, len(from.Options))
	}
	for k, v := range from.Options {
		if _, ok := into.Options[k]; !ok {
			into.Options[k] = v
		}
	}
	into.Parents = append(into.Parents, from.Parents...)
	if into.DefaultValue == 0 {
		into.DefaultValue = from.DefaultValue
	}
	return into
}

func (d *Data) segment(set contexts.Set) (Segment, bool) {
	if d == nil {
		return Segment{}, false
	}
	i, ok := d.index[set.Key()]
	if !ok {
		return Segment{}, false
	}
	return d.segments[i], true
}

// Empty reports whether d holds no data in any context.
func (d *Data) Empty() bool { return d == nil || len(d.segments) == 0 }

// Segments returns copies of all segments in insertion order.
func (d *Data) Segments() []Segment {
	if d == nil {
		return nil
	}
	out := make([]Segment, len(d.segments))
	for i, s := range d.segments {
		out[i] = s.clone()
	}
	return out
}

// ActiveContexts returns the context sets d has data for.
func (d *Data) ActiveContexts() []contexts.Set {
	if d == nil {
		return nil
	}
	out := make([]contexts.Set, len(d.segments))
	for i, s := range d.segments {
		out[i] = s.Contexts
	}
	return out
}

// Permissions returns the permissions set in exactly the given contexts.
func (d *Data) Permissions(set contexts.Set) map[string]int {
	s, _ := d.segment(set)
	return maps.Clone(s.Permissions)
}

// Permission returns the state of a single permission in exactly the given contexts.
// Unset permissions fall back to the segment's default value.
func (d *Data) Permission(set contexts.Set, perm string) permission.TriState {
	s, _ := d.segment(set)
	if v, ok := s.Permissions[perm]; ok {
		return permission.FromValue(v)
	}
	return permission.FromValue(s.DefaultValue)
}

// Parents returns the parents set in exactly the given contexts.
func (d *Data) Parents(set contexts.Set) []Ref {
	s, _ := d.segment(set)
	return slices.Clone(s.Parents)
}

// Options returns the options set in exactly the given contexts.
func (d *Data) Options(set contexts.Set) map[string]string {
	s, _ := d.segment(set)
	return maps.Clone(s.Options)
}

// Option returns a single option in exactly the given contexts.
func (d *Data) Option(set contexts.Set, key string) (string, bool) {
	s, _ := d.segment(set)
	v, ok := s.Options[key]
	return v, ok
}

// DefaultValue returns the default permission value in exactly the given contexts.
func (d *Data) DefaultValue(set contexts.Set) int {
	s, _ := d.segment(set)
	return s.DefaultValue
}
