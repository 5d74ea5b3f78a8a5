// Package subject contains the canonical, store independent representation
// of permission subjects and their data.
package subject

import (
	"fmt"
	"strings"
)

// Subject types every data store understands.
const (
	TypeUser  = "user"
	TypeGroup = "group"
)

// Types returns the subject types known to all stores.
func Types() []string { return []string{TypeUser, TypeGroup} }

// Ref identifies a subject by its type and identifier.
type Ref struct {
	Type       string `json:"type" yaml:"type"`
	Identifier string `json:"identifier" yaml:"identifier"`
}

// User returns a Ref to the user id.
func User(id string) Ref { return Ref{Type: TypeUser, Identifier: id} }

// Group returns a Ref to the group id.
func Group(id string) Ref { return Ref{Type: TypeGroup, Identifier: id} }

func (r Ref) String() string { return r.Type + ":" + r.Identifier }

// ParseRef parses the "type:identifier" form returned by Ref.String.
func ParseRef(s string) (Ref, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok || typ == "" || id == "" {
		return Ref{}, fmt.Errorf("invalid subject reference %q, expected type:identifier", s)
	}
	return Ref{Type: typ, Identifier: id}, nil
}
