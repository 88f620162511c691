// Package fixture implements the platform automation API on top of a YAML
// description of running applications. It stands in for the device-side UI
// automation framework when serving or testing the bridge off-device.
package fixture

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/mj1618/simu-bridge/internal/platform"
	"gopkg.in/yaml.v3"
)

func init() {
	platform.NewProviderFunc = func(source string) (platform.Automation, error) {
		if source == "" {
			return nil, platform.ErrUnsupported
		}
		return Load(source)
	}
}

// Spec is the top-level fixture document.
type Spec struct {
	Apps []AppSpec `yaml:"apps"`
}

// AppSpec describes one installed application and its window hierarchy.
type AppSpec struct {
	BundleIdentifier string        `yaml:"bundleIdentifier"`
	State            string        `yaml:"state,omitempty"` // default: runningForeground
	Label            string        `yaml:"label,omitempty"`
	Frame            *model.Rect   `yaml:"frame,omitempty"` // default: 390x844 at the origin
	Children         []ElementSpec `yaml:"children,omitempty"`
}

// ElementSpec describes one element. Repeat > 1 expands the element into that
// many siblings; a "%d" verb in Identifier or Label is replaced by the index.
type ElementSpec struct {
	Type        model.ElementKind `yaml:"type"`
	Identifier  string            `yaml:"identifier,omitempty"`
	Label       string            `yaml:"label,omitempty"`
	Value       *string           `yaml:"value,omitempty"`
	Placeholder string            `yaml:"placeholder,omitempty"`
	Enabled     *bool             `yaml:"enabled,omitempty"`
	Hittable    *bool             `yaml:"hittable,omitempty"`
	Selected    bool              `yaml:"selected,omitempty"`
	Hidden      bool              `yaml:"hidden,omitempty"`
	Frame       model.Rect        `yaml:"frame"`
	Repeat      int               `yaml:"repeat,omitempty"`
	Children    []ElementSpec     `yaml:"children,omitempty"`
}

var defaultAppFrame = model.Rect{Width: 390, Height: 844}

// Automation is a fixture-backed platform.Automation. It is safe for
// concurrent use so tests can mutate the hierarchy while the bridge reads it.
type Automation struct {
	mu      sync.Mutex
	apps    map[string]*App
	focused *node
	events  []Event
	hook    func(Event)
}

// Load reads a fixture document from path.
func Load(path string) (*Automation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Automation, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return New(spec)
}

// New builds an Automation from an in-memory spec.
func New(spec Spec) (*Automation, error) {
	a := &Automation{apps: make(map[string]*App, len(spec.Apps))}
	for _, as := range spec.Apps {
		if as.BundleIdentifier == "" {
			return nil, fmt.Errorf("fixture app is missing bundleIdentifier")
		}
		if _, dup := a.apps[as.BundleIdentifier]; dup {
			return nil, fmt.Errorf("duplicate fixture app %q", as.BundleIdentifier)
		}
		state := platform.AppStateRunningForeground
		if as.State != "" {
			s, err := platform.ParseAppState(as.State)
			if err != nil {
				return nil, fmt.Errorf("app %q: %w", as.BundleIdentifier, err)
			}
			state = s
		}
		frame := defaultAppFrame
		if as.Frame != nil {
			frame = *as.Frame
		}
		app := &App{bundleID: as.BundleIdentifier, state: state}
		app.node = &node{
			automation: a,
			kind:       model.KindApplication,
			label:      as.Label,
			frame:      frame,
			enabled:    true,
			hittable:   true,
		}
		app.node.children = a.build(as.Children, app.node)
		a.apps[as.BundleIdentifier] = app
	}
	return a, nil
}

func (a *Automation) build(specs []ElementSpec, parent *node) []*node {
	var out []*node
	for _, s := range specs {
		n := s.Repeat
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			el := &node{
				automation:  a,
				parent:      parent,
				kind:        s.Type,
				identifier:  expandIndex(s.Identifier, i, s.Repeat),
				label:       expandIndex(s.Label, i, s.Repeat),
				placeholder: s.Placeholder,
				enabled:     s.Enabled == nil || *s.Enabled,
				hittable:    s.Hittable == nil || *s.Hittable,
				selected:    s.Selected,
				hidden:      s.Hidden,
				frame:       s.Frame,
			}
			if s.Value != nil {
				v := *s.Value
				el.value = &v
			}
			el.children = a.build(s.Children, el)
			out = append(out, el)
		}
	}
	return out
}

func expandIndex(s string, i, repeat int) string {
	if repeat > 1 && strings.Contains(s, "%d") {
		return fmt.Sprintf(s, i)
	}
	return s
}

// Application implements platform.Automation. Unknown bundle identifiers yield
// a handle in the notRunning state, mirroring the platform API.
func (a *Automation) Application(bundleID string) platform.Application {
	a.mu.Lock()
	app, ok := a.apps[bundleID]
	a.mu.Unlock()
	if ok {
		return app
	}
	stub := &App{bundleID: bundleID, state: platform.AppStateNotRunning}
	stub.node = &node{automation: a, kind: model.KindApplication, frame: defaultAppFrame}
	return stub
}

// SetState changes the run state of a fixture app.
func (a *Automation) SetState(bundleID string, state platform.AppState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	app, ok := a.apps[bundleID]
	if !ok {
		return fmt.Errorf("no fixture app %q", bundleID)
	}
	app.state = state
	return nil
}

// SetHidden shows or hides every element with the given identifier.
// It returns the number of elements changed.
func (a *Automation) SetHidden(identifier string, hidden bool) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	changed := 0
	for _, app := range a.apps {
		app.node.walk(func(n *node) {
			if n.identifier == identifier {
				n.hidden = hidden
				changed++
			}
		})
	}
	return changed
}

// ValueOf returns the current value of the first element with the given identifier.
func (a *Automation) ValueOf(identifier string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var found *node
	for _, app := range a.apps {
		app.node.walk(func(n *node) {
			if found == nil && n.identifier == identifier {
				found = n
			}
		})
	}
	if found == nil || found.value == nil {
		return "", false
	}
	return *found.value, true
}

// Events returns a copy of the recorded gesture log.
func (a *Automation) Events() []Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Event, len(a.events))
	copy(out, a.events)
	return out
}

// ResetEvents clears the gesture log.
func (a *Automation) ResetEvents() {
	a.mu.Lock()
	a.events = nil
	a.mu.Unlock()
}

// OnEvent installs fn to be called for every recorded gesture, before the
// gesture returns. Tests use it to check where gestures run from. fn runs
// without the fixture lock held, so it may call back into the Automation.
func (a *Automation) OnEvent(fn func(Event)) {
	a.mu.Lock()
	a.hook = fn
	a.mu.Unlock()
}

// act runs fn under the fixture lock, logs the event it returns, then calls
// the hook after unlocking.
func (a *Automation) act(fn func() Event) {
	a.mu.Lock()
	e := fn()
	a.events = append(a.events, e)
	hook := a.hook
	a.mu.Unlock()
	if hook != nil {
		hook(e)
	}
}
