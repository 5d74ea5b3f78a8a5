// Package rank provides rank ladders, ordered lists of subjects a user can
// be promoted along.
package rank

import (
	"slices"

	"go.minekube.com/pex/pkg/subject"
)

// Ladder is an immutable rank ladder.
type Ladder struct {
	name  string
	ranks []subject.Ref
}

// Fixed returns a Ladder with the given ranks, lowest first.
func Fixed(name string, ranks ...subject.Ref) *Ladder {
	return &Ladder{name: name, ranks: slices.Clone(ranks)}
}

// Name returns the ladder name.
func (l *Ladder) Name() string { return l.name }

// Ranks returns the ranks of the ladder, lowest first.
func (l *Ladder) Ranks() []subject.Ref { return slices.Clone(l.ranks) }

// Len returns the number of ranks.
func (l *Ladder) Len() int { return len(l.ranks) }

// IndexOf returns the position of ref in the ladder, or -1.
func (l *Ladder) IndexOf(ref subject.Ref) int { return slices.Index(l.ranks, ref) }
