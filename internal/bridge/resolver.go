package bridge

import (
	"github.com/mj1618/simu-bridge/internal/platform"
)

// Resolve finds the single element a query designates: the first existing
// descendant whose identifier equals q.Identifier, else the first whose label
// equals q.Label. Coordinates and element type are ignored.
func Resolve(app platform.Application, q Query) (platform.Element, error) {
	if app == nil {
		return nil, ErrElementNotFound
	}
	if q.Identifier == "" && q.Label == "" {
		return nil, ErrElementNotFound
	}
	descendants := app.Descendants()
	if q.Identifier != "" {
		if el := firstMatch(descendants, func(el platform.Element) bool {
			return el.Identifier() == q.Identifier
		}); el != nil {
			return el, nil
		}
	}
	if q.Label != "" {
		if el := firstMatch(descendants, func(el platform.Element) bool {
			return el.Label() == q.Label
		}); el != nil {
			return el, nil
		}
	}
	return nil, ErrElementNotFound
}

func firstMatch(elements []platform.Element, pred func(platform.Element) bool) platform.Element {
	for _, el := range elements {
		if pred(el) && el.Exists() {
			return el
		}
	}
	return nil
}

// target resolves the element a screen-level gesture acts on, falling back to
// the whole application.
func target(app platform.Application, q Query) (platform.Element, error) {
	if el, err := Resolve(app, q); err == nil {
		return el, nil
	}
	if app == nil {
		return nil, ErrNoTarget
	}
	return app, nil
}

// Matches reports whether el satisfies every non-empty field of q.
func (q Query) Matches(el platform.Element) bool {
	if q.Identifier != "" && el.Identifier() != q.Identifier {
		return false
	}
	if q.Label != "" && el.Label() != q.Label {
		return false
	}
	if q.ElementType != "" && el.Kind().String() != q.ElementType {
		return false
	}
	return true
}
