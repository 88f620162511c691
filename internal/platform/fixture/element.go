package fixture

import (
	"time"

	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/mj1618/simu-bridge/internal/platform"
)

// Event is one recorded gesture.
type Event struct {
	Action    string // tap, press, swipe, type, pinch, tapCoordinate, drag
	Target    string // identifier, else label, else kind of the acted-on element
	Text      string
	Direction platform.Direction
	Duration  time.Duration
	Scale     float64
	Velocity  float64
	X, Y      float64
	ToX, ToY  float64
}

// editableKinds receive typed text. 45 and 52 are search fields and text views.
var editableKinds = map[model.ElementKind]bool{
	model.KindTextField:       true,
	model.KindSecureTextField: true,
	45:                        true,
	52:                        true,
}

type node struct {
	automation  *Automation
	parent      *node
	children    []*node
	kind        model.ElementKind
	identifier  string
	label       string
	value       *string
	placeholder string
	enabled     bool
	hittable    bool
	selected    bool
	hidden      bool
	frame       model.Rect
}

func (n *node) lock()   { n.automation.mu.Lock() }
func (n *node) unlock() { n.automation.mu.Unlock() }

func (n *node) Kind() model.ElementKind { return n.kind }
func (n *node) Identifier() string      { return n.identifier }
func (n *node) Label() string           { return n.label }
func (n *node) PlaceholderValue() string {
	return n.placeholder
}
func (n *node) IsEnabled() bool  { return n.enabled }
func (n *node) IsSelected() bool { return n.selected }
func (n *node) Frame() model.Rect {
	return n.frame
}

func (n *node) Value() (string, bool) {
	n.lock()
	defer n.unlock()
	if n.value == nil {
		return "", false
	}
	return *n.value, true
}

func (n *node) IsHittable() bool {
	n.lock()
	defer n.unlock()
	return n.hittable && n.visible()
}

func (n *node) Exists() bool {
	n.lock()
	defer n.unlock()
	return n.visible()
}

// visible reports whether n and all its ancestors are shown; caller holds the lock.
func (n *node) visible() bool {
	for p := n; p != nil; p = p.parent {
		if p.hidden {
			return false
		}
	}
	return true
}

func (n *node) Children() []platform.Element {
	n.lock()
	defer n.unlock()
	if !n.visible() {
		return []platform.Element{}
	}
	out := make([]platform.Element, 0, len(n.children))
	for _, c := range n.children {
		if !c.hidden {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) Descendants() []platform.Element {
	n.lock()
	defer n.unlock()
	var out []platform.Element
	if !n.visible() {
		return out
	}
	var visit func(*node)
	visit = func(p *node) {
		for _, c := range p.children {
			if c.hidden {
				continue
			}
			out = append(out, c)
			visit(c)
		}
	}
	visit(n)
	return out
}

// walk visits n and every descendant, hidden or not; caller holds the lock.
func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

func (n *node) describe() string {
	switch {
	case n.identifier != "":
		return n.identifier
	case n.label != "":
		return n.label
	default:
		return n.kind.String()
	}
}

func (n *node) Tap() error {
	n.automation.act(func() Event {
		n.tapLocked()
		return Event{Action: "tap", Target: n.describe()}
	})
	return nil
}

func (n *node) tapLocked() {
	if editableKinds[n.kind] {
		n.automation.focused = n
	}
	if n.kind == model.KindSwitch {
		v := "1"
		if n.value != nil && *n.value == "1" {
			v = "0"
		}
		n.value = &v
	}
}

func (n *node) Press(d time.Duration) error {
	n.automation.act(func() Event {
		return Event{Action: "press", Target: n.describe(), Duration: d}
	})
	return nil
}

func (n *node) Swipe(dir platform.Direction) error {
	n.automation.act(func() Event {
		return Event{Action: "swipe", Target: n.describe(), Direction: dir}
	})
	return nil
}

func (n *node) Pinch(scale, velocity float64) error {
	n.automation.act(func() Event {
		return Event{Action: "pinch", Target: n.describe(), Scale: scale, Velocity: velocity}
	})
	return nil
}

// TypeText edits n when it is editable, otherwise the focused element.
// Each DeleteKey removes the last character.
func (n *node) TypeText(text string) error {
	n.automation.act(func() Event {
		n.typeLocked(text)
		return Event{Action: "type", Target: n.describe(), Text: text}
	})
	return nil
}

func (n *node) typeLocked(text string) {
	target := n
	if !editableKinds[n.kind] {
		target = n.automation.focused
	}
	if target != nil {
		current := ""
		if target.value != nil {
			current = *target.value
		}
		runes := []rune(current)
		for _, r := range text {
			if string(r) == platform.DeleteKey {
				if len(runes) > 0 {
					runes = runes[:len(runes)-1]
				}
				continue
			}
			runes = append(runes, r)
		}
		v := string(runes)
		target.value = &v
	}
}

// hitTest returns the deepest visible element containing (x, y); caller holds the lock.
func (n *node) hitTest(x, y float64) *node {
	if n.hidden || !contains(n.frame, x, y) {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := n.children[i].hitTest(x, y); hit != nil {
			return hit
		}
	}
	return n
}

func contains(r model.Rect, x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// App is a fixture application.
type App struct {
	*node
	bundleID string
	state    platform.AppState
}

func (a *App) BundleID() string { return a.bundleID }

func (a *App) State() platform.AppState {
	a.lock()
	defer a.unlock()
	return a.state
}

func (a *App) Coordinate(dx, dy float64) platform.Coordinate {
	return &coordinate{
		app: a,
		x:   a.frame.X + dx*a.frame.Width,
		y:   a.frame.Y + dy*a.frame.Height,
	}
}

type coordinate struct {
	app  *App
	x, y float64
}

func (c *coordinate) WithOffset(dx, dy float64) platform.Coordinate {
	return &coordinate{app: c.app, x: c.x + dx, y: c.y + dy}
}

func (c *coordinate) Point() (float64, float64) { return c.x, c.y }

func (c *coordinate) Tap() error {
	c.app.automation.act(func() Event {
		target := ""
		if hit := c.app.node.hitTest(c.x, c.y); hit != nil {
			hit.tapLocked()
			target = hit.describe()
		}
		return Event{Action: "tapCoordinate", Target: target, X: c.x, Y: c.y}
	})
	return nil
}

func (c *coordinate) PressAndDrag(d time.Duration, to platform.Coordinate) error {
	toX, toY := to.Point()
	c.app.automation.act(func() Event {
		return Event{Action: "drag", Duration: d, X: c.x, Y: c.y, ToX: toX, ToY: toY}
	})
	return nil
}
