package platform

import (
	"time"

	"github.com/mj1618/simu-bridge/internal/model"
)

// Automation is the entry point into the platform UI-automation API. All of
// its methods, and every method on the values it hands out, must be called
// from the automation context (see package mainthread).
type Automation interface {
	// Application returns a handle to the application with the given bundle
	// identifier. The handle is returned even when the app is not running;
	// callers check State.
	Application(bundleID string) Application
}

// Element is a live handle into the UI hierarchy. Handles are only valid
// inside the automation-context task that obtained them.
type Element interface {
	Kind() model.ElementKind
	Identifier() string
	Label() string
	// Value returns the element's value when it is a string.
	Value() (string, bool)
	PlaceholderValue() string
	IsEnabled() bool
	IsHittable() bool
	IsSelected() bool
	Frame() model.Rect
	Exists() bool

	// Children returns the live direct children in hierarchy order.
	Children() []Element
	// Descendants returns all live descendants in depth-first pre-order.
	Descendants() []Element

	Tap() error
	Press(d time.Duration) error
	Swipe(dir Direction) error
	TypeText(text string) error
	Pinch(scale, velocity float64) error
}

// Application is the root element of an attached app.
type Application interface {
	Element
	BundleID() string
	State() AppState
	// Coordinate returns a point expressed as a normalized offset into the
	// application's frame.
	Coordinate(dx, dy float64) Coordinate
}

// Coordinate is a point on the application surface.
type Coordinate interface {
	// WithOffset returns a coordinate shifted by (dx, dy) points.
	WithOffset(dx, dy float64) Coordinate
	Point() (x, y float64)
	Tap() error
	PressAndDrag(d time.Duration, to Coordinate) error
}
