package bridge

import (
	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/mj1618/simu-bridge/internal/platform"
)

// Budget bounds a tree serialization. The root is at depth 0; a node at
// MaxDepth is emitted without a children key. Nodes with more than ChildCap
// children keep the first ChildCap followed by a truncation marker.
type Budget struct {
	MaxDepth int
	ChildCap int
}

// DefaultBudget is the budget used when none is configured.
var DefaultBudget = Budget{MaxDepth: 6, ChildCap: 30}

// FindLimits bounds a find result. More than UpperBound matches collapse into
// a single too-many-results marker; otherwise at most ResultCap are returned.
type FindLimits struct {
	UpperBound int
	ResultCap  int
}

// DefaultFindLimits is used when no limits are configured.
var DefaultFindLimits = FindLimits{UpperBound: 200, ResultCap: 20}

// Describe serializes a single element without its children.
func Describe(el platform.Element) model.Node {
	n := model.Node{
		Type:       el.Kind().String(),
		Identifier: el.Identifier(),
		Label:      el.Label(),
		Disabled:   !el.IsEnabled(),
		Frame:      el.Frame().Frame(),
	}
	if v, ok := el.Value(); ok {
		n.Value = v
	}
	return n
}

// Serialize walks the live hierarchy under root within budget b. The walk
// uses an explicit worklist, so hierarchy depth never grows the Go stack.
func Serialize(root platform.Element, b Budget) model.Node {
	type item struct {
		el    platform.Element
		depth int
		dst   *model.Node
	}

	var out model.Node
	work := []item{{el: root, depth: 0, dst: &out}}
	for len(work) > 0 {
		it := work[len(work)-1]
		work = work[:len(work)-1]

		*it.dst = Describe(it.el)
		if it.depth >= b.MaxDepth {
			continue
		}

		live := it.el.Children()
		kept := len(live)
		if kept > b.ChildCap {
			kept = b.ChildCap
		}
		// Capacity for the marker, so appending it never moves the slots
		// that queued items point into.
		children := make([]model.Node, kept, kept+1)
		for i := kept - 1; i >= 0; i-- {
			work = append(work, item{el: live[i], depth: it.depth + 1, dst: &children[i]})
		}
		if omitted := len(live) - kept; omitted > 0 {
			children = append(children, model.TruncationMarker(omitted))
		}
		it.dst.Children = children
	}
	return out
}

// Find returns the descendants of app matching every non-empty field of q,
// serialized one level deep.
func Find(app platform.Application, q Query, limits FindLimits) []model.Node {
	var matches []platform.Element
	for _, el := range app.Descendants() {
		if q.Matches(el) {
			matches = append(matches, el)
		}
	}

	switch {
	case len(matches) == 0:
		return []model.Node{}
	case len(matches) > limits.UpperBound:
		return []model.Node{model.TooManyResultsMarker(len(matches))}
	}
	if len(matches) > limits.ResultCap {
		matches = matches[:limits.ResultCap]
	}
	out := make([]model.Node, len(matches))
	for i, el := range matches {
		out[i] = Describe(el)
	}
	return out
}
