package groupmanager

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"go.minekube.com/pex/pkg/subject"
	"go.minekube.com/pex/pkg/util/configtree"
)

// globalPrefix marks global group keys in globalgroups.yml.
// It exists only in the files; identifiers handed out never carry it.
const globalPrefix = "g:"

// entity is a kind of subject stored by GroupManager.
type entity int

const (
	userEntity entity = iota
	groupEntity
)

func entityOf(typ string) (entity, bool) {
	switch typ {
	case subject.TypeUser:
		return userEntity, true
	case subject.TypeGroup:
		return groupEntity, true
	}
	return 0, false
}

func (e entity) String() string {
	if e == userEntity {
		return subject.TypeUser
	}
	return subject.TypeGroup
}

// identifier turns a caller supplied identifier into the key looked up in
// the files. Groups may be asked for with their global prefix.
func (e entity) identifier(id string) string {
	if e == groupEntity {
		return stripGlobal(id)
	}
	return id
}

func stripGlobal(id string) string {
	id, _ = strings.CutPrefix(id, globalPrefix)
	return id
}

// matchKey is the form keys and identifiers are compared in when no key
// matches exactly: trimmed, UUIDs in canonical form and case folded.
func (e entity) matchKey(id string) string {
	id = strings.TrimSpace(id)
	if e == userEntity {
		if u, err := uuid.Parse(id); err == nil {
			id = u.String()
		}
	}
	return cases.Fold().String(id)
}

// lookup returns the child of tree keyed id.
// An exact key wins, otherwise the first key with the same matchKey.
func (e entity) lookup(tree configtree.Node, id string) configtree.Node {
	if n := tree.Node(id); !n.Virtual() {
		return n
	}
	want := e.matchKey(id)
	for _, c := range tree.ChildrenMap() {
		if e.matchKey(c.Key) == want {
			return c.Node
		}
	}
	return configtree.Node{}
}
