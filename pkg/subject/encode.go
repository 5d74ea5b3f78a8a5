package subject

import (
	"encoding/json"

	"go.minekube.com/pex/pkg/contexts"
)

// segmentDoc is the serialized form of a Segment.
type segmentDoc struct {
	Contexts     []contexts.Value  `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Permissions  map[string]int    `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Parents      []string          `json:"parents,omitempty" yaml:"parents,omitempty"`
	Options      map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultValue int               `json:"permissions-default,omitempty" yaml:"permissions-default,omitempty"`
}

func (d *Data) docs() []segmentDoc {
	segs := d.Segments()
	out := make([]segmentDoc, 0, len(segs))
	for _, s := range segs {
		doc := segmentDoc{
			Contexts:     s.Contexts.Values(),
			Permissions:  s.Permissions,
			Options:      s.Options,
			DefaultValue: s.DefaultValue,
		}
		for _, p := range s.Parents {
			doc.Parents = append(doc.Parents, p.String())
		}
		out = append(out, doc)
	}
	return out
}

// MarshalJSON encodes d as a list of segments.
func (d *Data) MarshalJSON() ([]byte, error) { return json.Marshal(d.docs()) }

// MarshalYAML encodes d as a list of segments.
func (d *Data) MarshalYAML() (any, error) { return d.docs(), nil }
