package bridge

import (
	"fmt"
	"testing"

	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/mj1618/simu-bridge/internal/platform/fixture"
)

const appFixture = `
apps:
  - bundleIdentifier: com.example.app
    label: Example
    children:
      - type: window
        frame: {x: 0, y: 0, width: 390, height: 844}
        children:
          - type: textField
            identifier: username
            label: Username
            value: ""
            frame: {x: 20, y: 100, width: 350, height: 44}
          - type: textField
            identifier: email
            label: Email
            value: "añb@x.io"
            frame: {x: 20, y: 150, width: 350, height: 44}
          - type: button
            identifier: login
            label: Log In
            frame: {x: 20.4, y: 200.6, width: 350, height: 44}
          - type: button
            label: Help
            enabled: false
            frame: {x: 20, y: 260, width: 100, height: 44}
          - type: staticText
            identifier: toast
            label: Saved
            hidden: true
          - type: unknown(99)
            identifier: exotic
  - bundleIdentifier: com.example.other
  - bundleIdentifier: com.example.sleeping
    state: notRunning
`

func newFixture(t *testing.T, doc string) *fixture.Automation {
	t.Helper()
	a, err := fixture.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return a
}

// newEngine returns an engine attached to com.example.app.
func newEngine(t *testing.T, doc string, opts Options) (*Engine, *fixture.Automation) {
	t.Helper()
	a := newFixture(t, doc)
	e := NewEngine(NewSession(a), opts)
	if err := e.Attach("com.example.app"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return e, a
}

// chain returns a fixture whose app holds a single path of depth nested
// "other" elements named level-1 ... level-depth.
func chain(depth int) fixture.Spec {
	var children []fixture.ElementSpec
	for i := depth; i >= 1; i-- {
		children = []fixture.ElementSpec{{
			Type:       model.KindOther,
			Identifier: levelID(i),
			Children:   children,
		}}
	}
	return fixture.Spec{Apps: []fixture.AppSpec{{BundleIdentifier: "com.example.app", Children: children}}}
}

func levelID(i int) string {
	return fmt.Sprintf("level-%d", i)
}

// siblings returns a fixture whose app has n direct cell children.
func siblings(n int) fixture.Spec {
	return fixture.Spec{Apps: []fixture.AppSpec{{
		BundleIdentifier: "com.example.app",
		Children: []fixture.ElementSpec{{
			Type:       model.KindCell,
			Identifier: "cell-%d",
			Label:      "Row",
			Repeat:     n,
		}},
	}}}
}

func engineFor(t *testing.T, spec fixture.Spec, opts Options) *Engine {
	t.Helper()
	a, err := fixture.New(spec)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(NewSession(a), opts)
	if err := e.Attach("com.example.app"); err != nil {
		t.Fatal(err)
	}
	return e
}
