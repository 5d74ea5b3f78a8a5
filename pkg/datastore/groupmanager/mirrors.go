package groupmanager

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/util/configtree"
)

// Mirrors is the world mirroring of a GroupManager config.yml as context inheritance.
// A mirrored world inherits the world=<root> context of every world it mirrors.
type Mirrors struct {
	*contexts.MapInheritance
	roots map[string]mapset.Set[string] // mirrored world -> roots
}

var _ contexts.Inheritance = (*Mirrors)(nil)

// parseMirrors reads settings.mirrors in either form GroupManager accepts:
//
//	mirrors:
//	  world:               # map form, values name the mirrored files
//	    world_nether: [users, groups]
//	  world2: [world3]     # list form
func parseMirrors(node configtree.Node) *Mirrors {
	m := &Mirrors{roots: map[string]mapset.Set[string]{}}
	parents := map[contexts.Value][]contexts.Value{}
	for _, root := range node.Keys() {
		child := node.Node(root)
		var worlds []string
		switch {
		case child.IsMap():
			worlds = child.Keys()
		default:
			worlds = child.Strings()
		}
		for _, w := range worlds {
			w = strings.TrimSpace(w)
			if w == "" || w == root {
				continue
			}
			set, ok := m.roots[w]
			if !ok {
				set = mapset.NewThreadUnsafeSet[string]()
				m.roots[w] = set
			}
			if set.Add(root) {
				v := contexts.V(WorldContext, w)
				parents[v] = append(parents[v], contexts.V(WorldContext, root))
			}
		}
	}
	m.MapInheritance = contexts.NewMapInheritance(parents)
	return m
}

// MirrorsOf returns the worlds the given world mirrors.
// The returned set is a copy.
func (m *Mirrors) MirrorsOf(world string) mapset.Set[string] {
	if m == nil {
		return mapset.NewThreadUnsafeSet[string]()
	}
	if set, ok := m.roots[world]; ok {
		return set.Clone()
	}
	return mapset.NewThreadUnsafeSet[string]()
}

// Mirrored returns every world that mirrors another.
func (m *Mirrors) Mirrored() mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	if m == nil {
		return out
	}
	for w := range m.roots {
		out.Add(w)
	}
	return out
}
