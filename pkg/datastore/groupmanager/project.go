package groupmanager

import (
	"strings"

	"go.minekube.com/pex/pkg/contexts"
	"go.minekube.com/pex/pkg/subject"
	"go.minekube.com/pex/pkg/util/configtree"
)

// WorldContext is the context key GroupManager worlds are mapped to.
const WorldContext = "world"

// project builds the data of a subject from every place GroupManager stores it:
// global groups without contexts, then each world in name order scoped to world=<name>.
func (idx *index) project(e entity, id string) *subject.Data {
	var segments []subject.Segment
	if e == groupEntity {
		if n := e.lookup(idx.globalGroups, globalPrefix+id); !n.Virtual() {
			segments = append(segments, e.segment(contexts.Set{}, n))
		}
	}
	for _, name := range idx.worldNames {
		if n := e.lookup(idx.worlds[name].tree(e), id); !n.Virtual() {
			segments = append(segments, e.segment(contexts.NewSet(contexts.V(WorldContext, name)), n))
		}
	}
	return subject.NewData(segments...)
}

// registered reports whether id has an entry of e in any segment.
func (idx *index) registered(e entity, id string) bool {
	if e == groupEntity && !e.lookup(idx.globalGroups, globalPrefix+id).Virtual() {
		return true
	}
	for _, name := range idx.worldNames {
		if !e.lookup(idx.worlds[name].tree(e), id).Virtual() {
			return true
		}
	}
	return false
}

// identifiers returns the keys of all non-null entries of e,
// group keys without the global prefix.
func (idx *index) identifiers(e entity) []string {
	var ids []string
	if e == groupEntity {
		for _, c := range idx.globalGroups.ChildrenMap() {
			ids = append(ids, stripGlobal(c.Key))
		}
	}
	for _, name := range idx.worldNames {
		for _, c := range idx.worlds[name].tree(e).ChildrenMap() {
			ids = append(ids, e.identifier(c.Key))
		}
	}
	return ids
}

func (e entity) segment(ctx contexts.Set, n configtree.Node) subject.Segment {
	seg := subject.Segment{Contexts: ctx}
	applyPermissions(&seg, n.Node("permissions").Strings())
	seg.Options = options(n.Node("info"))

	switch e {
	case userEntity:
		if g := strings.TrimSpace(n.Node("group").String()); g != "" {
			seg.Parents = append(seg.Parents, subject.Group(stripGlobal(g)))
		}
		seg.Parents = appendGroups(seg.Parents, n.Node("subgroups").Strings())
		if name := n.Node("lastname").String(); name != "" {
			seg.Options = setOption(seg.Options, "name", name)
		}
	case groupEntity:
		seg.Parents = appendGroups(seg.Parents, n.Node("inheritance").Strings())
		if def, ok := n.Node("default").Bool(); ok && def {
			seg.Options = setOption(seg.Options, "default", "true")
		}
	}
	return seg
}

// applyPermissions maps GroupManager permission nodes:
// "-node" denies, "node" and "+node" grant, "*" and "-*" set the default.
// The first entry for a node wins.
func applyPermissions(seg *subject.Segment, nodes []string) {
	for _, node := range nodes {
		node = strings.TrimSpace(node)
		value := 1
		switch {
		case node == "":
			continue
		case node == "*":
			seg.DefaultValue = 1
			continue
		case node == "-*":
			seg.DefaultValue = -1
			continue
		case strings.HasPrefix(node, "-"):
			value, node = -1, node[1:]
		case strings.HasPrefix(node, "+"):
			node = node[1:]
		}
		if node == "" {
			continue
		}
		if seg.Permissions == nil {
			seg.Permissions = map[string]int{}
		}
		if _, ok := seg.Permissions[node]; !ok {
			seg.Permissions[node] = value
		}
	}
}

// options returns the scalar entries of an info section.
func options(info configtree.Node) map[string]string {
	var opts map[string]string
	for _, e := range info.ChildrenMap() {
		if e.Node.IsScalar() {
			opts = setOption(opts, e.Key, e.Node.String())
		}
	}
	return opts
}

func setOption(opts map[string]string, key, value string) map[string]string {
	if opts == nil {
		opts = map[string]string{}
	}
	if _, ok := opts[key]; !ok {
		opts[key] = value
	}
	return opts
}

func appendGroups(parents []subject.Ref, names []string) []subject.Ref {
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			parents = append(parents, subject.Group(stripGlobal(name)))
		}
	}
	return parents
}
