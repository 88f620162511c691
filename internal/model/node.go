package model

import (
	"encoding/json"
	"math"
)

// Rect is a live element frame in points, as reported by the automation API.
type Rect struct {
	X      float64 `json:"x"      yaml:"x"`
	Y      float64 `json:"y"      yaml:"y"`
	Width  float64 `json:"width"  yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Frame rounds r to integer pixel coordinates.
func (r Rect) Frame() Frame {
	return Frame{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Round(r.Width)),
		Height: int(math.Round(r.Height)),
	}
}

// Frame is the serialized element rectangle.
type Frame struct {
	X      int `json:"x"      yaml:"x"`
	Y      int `json:"y"      yaml:"y"`
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Node is one serialized element of the UI hierarchy. It is rebuilt from the
// live hierarchy on every request.
//
// Children distinguishes three states: nil means the node sat at the depth
// limit and its children were not visited (no "children" key on the wire); an
// empty slice means a leaf; otherwise the visited children, possibly followed
// by a truncation marker.
//
// A Node with Omitted > 0 or TooManyResults > 0 is a marker, not an element.
type Node struct {
	Type       string
	Identifier string
	Label      string
	Value      string
	Disabled   bool
	Frame      Frame
	Children   []Node

	Omitted        int
	TooManyResults int
}

// TruncationMarker returns the marker appended after capped children.
func TruncationMarker(omitted int) Node {
	return Node{Omitted: omitted}
}

// TooManyResultsMarker returns the marker that replaces an oversized find result.
func TooManyResultsMarker(count int) Node {
	return Node{TooManyResults: count}
}

// IsMarker reports whether n is a truncation or too-many-results marker.
func (n Node) IsMarker() bool {
	return n.Omitted > 0 || n.TooManyResults > 0
}

type nodeWire struct {
	Type       string  `json:"type"                yaml:"type"`
	Identifier string  `json:"identifier"          yaml:"identifier"`
	Label      string  `json:"label"               yaml:"label"`
	Value      string  `json:"value,omitempty"     yaml:"value,omitempty"`
	IsEnabled  *bool   `json:"isEnabled,omitempty" yaml:"isEnabled,omitempty"`
	Frame      Frame   `json:"frame"               yaml:"frame"`
	Children   *[]Node `json:"children,omitempty"  yaml:"children,omitempty"`
}

type markerWire struct {
	Omitted        *int `json:"_truncated,omitempty"      yaml:"_truncated,omitempty"`
	TooManyResults *int `json:"_tooManyResults,omitempty" yaml:"_tooManyResults,omitempty"`
}

func (n Node) wire() interface{} {
	switch {
	case n.TooManyResults > 0:
		return markerWire{TooManyResults: &n.TooManyResults}
	case n.Omitted > 0:
		return markerWire{Omitted: &n.Omitted}
	}
	w := nodeWire{
		Type:       n.Type,
		Identifier: n.Identifier,
		Label:      n.Label,
		Value:      n.Value,
		Frame:      n.Frame,
	}
	if n.Disabled {
		enabled := false
		w.IsEnabled = &enabled
	}
	if n.Children != nil {
		children := n.Children
		w.Children = &children
	}
	return w
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

// MarshalYAML implements yaml.Marshaler.
func (n Node) MarshalYAML() (interface{}, error) {
	return n.wire(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(b []byte) error {
	var m markerWire
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	switch {
	case m.TooManyResults != nil:
		*n = TooManyResultsMarker(*m.TooManyResults)
		return nil
	case m.Omitted != nil:
		*n = TruncationMarker(*m.Omitted)
		return nil
	}

	var w nodeWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*n = Node{
		Type:       w.Type,
		Identifier: w.Identifier,
		Label:      w.Label,
		Value:      w.Value,
		Disabled:   w.IsEnabled != nil && !*w.IsEnabled,
		Frame:      w.Frame,
	}
	if w.Children != nil {
		n.Children = *w.Children
		if n.Children == nil {
			n.Children = []Node{}
		}
	}
	return nil
}
