package bridge

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/mj1618/simu-bridge/internal/platform"
)

// Gesture defaults. Durations in requests are in seconds.
const (
	DefaultLongPress    = 1.0
	DefaultWaitTimeout  = 5.0
	DefaultPinchScale   = 2.0
	DefaultPinchSpeed   = 1.0
	DragPressDuration   = 500 * time.Millisecond
	defaultMaxWait      = 25 * time.Second
	defaultPollInterval = 250 * time.Millisecond
)

// Result is the outcome of a gesture.
type Result struct {
	Success    bool    `json:"success"              yaml:"success"`
	Method     string  `json:"method,omitempty"     yaml:"method,omitempty"`
	Identifier *string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Label      *string `json:"label,omitempty"      yaml:"label,omitempty"`
	Deleted    *int    `json:"deleted,omitempty"    yaml:"deleted,omitempty"`
	TimedOut   bool    `json:"timedOut,omitempty"   yaml:"timedOut,omitempty"`
}

var succeeded = Result{Success: true}

// ExistsResult answers /ui/exists.
type ExistsResult struct {
	Exists bool `json:"exists" yaml:"exists"`
}

// Info is the detail record of one element.
type Info struct {
	Identifier       string     `json:"identifier"       yaml:"identifier"`
	Label            string     `json:"label"            yaml:"label"`
	Value            string     `json:"value"            yaml:"value"`
	PlaceholderValue string     `json:"placeholderValue" yaml:"placeholderValue"`
	Type             string     `json:"type"             yaml:"type"`
	IsEnabled        bool       `json:"isEnabled"        yaml:"isEnabled"`
	IsHittable       bool       `json:"isHittable"       yaml:"isHittable"`
	IsSelected       bool       `json:"isSelected"       yaml:"isSelected"`
	Frame            model.Rect `json:"frame"            yaml:"frame"`
}

// Options configures an Engine. Zero fields take their defaults.
type Options struct {
	Budget       Budget
	Find         FindLimits
	MaxWait      time.Duration
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Engine performs queries and gestures against the attached application.
// Every method must run on the automation context.
type Engine struct {
	session *Session
	budget  Budget
	find    FindLimits
	maxWait time.Duration
	poll    time.Duration
	log     *slog.Logger
}

// NewEngine returns an engine operating on session.
func NewEngine(session *Session, opts Options) *Engine {
	e := &Engine{
		session: session,
		budget:  opts.Budget,
		find:    opts.Find,
		maxWait: opts.MaxWait,
		poll:    opts.PollInterval,
		log:     opts.Logger,
	}
	if e.budget == (Budget{}) {
		e.budget = DefaultBudget
	}
	if e.find == (FindLimits{}) {
		e.find = DefaultFindLimits
	}
	if e.maxWait <= 0 {
		e.maxWait = defaultMaxWait
	}
	if e.poll <= 0 {
		e.poll = defaultPollInterval
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	e.log = e.log.With("component", "engine")
	return e
}

// Session returns the engine's session.
func (e *Engine) Session() *Session { return e.session }

func (e *Engine) app() platform.Application {
	app, _ := e.session.App()
	return app
}

// Attach attaches the session to bundleID.
func (e *Engine) Attach(bundleID string) error {
	if err := e.session.Attach(bundleID); err != nil {
		return err
	}
	e.log.Info("attached", "bundle_id", bundleID)
	return nil
}

// Tree serializes the attached application, or returns an empty list.
func (e *Engine) Tree() []model.Node {
	app := e.app()
	if app == nil {
		return []model.Node{}
	}
	return []model.Node{Serialize(app, e.budget)}
}

// Find lists elements matching q.
func (e *Engine) Find(q Query) []model.Node {
	app := e.app()
	if app == nil {
		return []model.Node{}
	}
	return Find(app, q, e.find)
}

// Tap taps the point in q when it has one, else the resolved element.
func (e *Engine) Tap(q Query) (Result, error) {
	if q.HasPoint() {
		app := e.app()
		if app == nil {
			return Result{}, ErrNoApp
		}
		if err := app.Coordinate(0, 0).WithOffset(*q.X, *q.Y).Tap(); err != nil {
			return Result{}, err
		}
		return Result{Success: true, Method: "coordinate"}, nil
	}

	el, err := Resolve(e.app(), q)
	if err != nil {
		return Result{}, err
	}
	if err := el.Tap(); err != nil {
		return Result{}, err
	}
	id, label := el.Identifier(), el.Label()
	return Result{Success: true, Identifier: &id, Label: &label}, nil
}

// LongPress presses the resolved element for duration seconds.
func (e *Engine) LongPress(q Query, duration float64) (Result, error) {
	el, err := Resolve(e.app(), q)
	if err != nil {
		return Result{}, err
	}
	if err := el.Press(seconds(duration)); err != nil {
		return Result{}, err
	}
	return succeeded, nil
}

// Swipe swipes the resolved element, or the whole app, in direction.
func (e *Engine) Swipe(q Query, direction string) (Result, error) {
	if direction == "" {
		return Result{}, ErrMissingDirection
	}
	dir, err := platform.ParseDirection(direction)
	if err != nil {
		return Result{}, err
	}
	el, err := target(e.app(), q)
	if err != nil {
		return Result{}, err
	}
	if err := el.Swipe(dir); err != nil {
		return Result{}, err
	}
	return succeeded, nil
}

// Scroll is a swipe.
func (e *Engine) Scroll(q Query, direction string) (Result, error) {
	return e.Swipe(q, direction)
}

// Type focuses the resolved element and types text into it. Without a
// resolvable element the text goes to the app's focused element.
func (e *Engine) Type(q Query, text string) (Result, error) {
	app := e.app()
	if el, err := Resolve(app, q); err == nil {
		if err := el.Tap(); err != nil {
			return Result{}, err
		}
		if err := el.TypeText(text); err != nil {
			return Result{}, err
		}
		return succeeded, nil
	}
	if app == nil {
		return Result{}, ErrNoApp
	}
	if err := app.TypeText(text); err != nil {
		return Result{}, err
	}
	return succeeded, nil
}

// Clear focuses the resolved element and deletes its value one character at
// a time.
func (e *Engine) Clear(q Query) (Result, error) {
	el, err := Resolve(e.app(), q)
	if err != nil {
		return Result{}, err
	}
	if err := el.Tap(); err != nil {
		return Result{}, err
	}
	value, _ := el.Value()
	n := utf8.RuneCountInString(value)
	if n > 0 {
		if err := el.TypeText(strings.Repeat(platform.DeleteKey, n)); err != nil {
			return Result{}, err
		}
	}
	return Result{Success: true, Deleted: &n}, nil
}

// Drag presses at from and drags to to, both in application points.
func (e *Engine) Drag(fromX, fromY, toX, toY float64) (Result, error) {
	app := e.app()
	if app == nil {
		return Result{}, ErrNoApp
	}
	origin := app.Coordinate(0, 0)
	from := origin.WithOffset(fromX, fromY)
	to := origin.WithOffset(toX, toY)
	if err := from.PressAndDrag(DragPressDuration, to); err != nil {
		return Result{}, err
	}
	return succeeded, nil
}

// Pinch pinches the resolved element, or the whole app.
func (e *Engine) Pinch(q Query, scale, velocity float64) (Result, error) {
	el, err := target(e.app(), q)
	if err != nil {
		return Result{}, err
	}
	if err := el.Pinch(scale, velocity); err != nil {
		return Result{}, err
	}
	return succeeded, nil
}

// Wait polls until an element with identifier exists (or, with exists false,
// is gone) or timeout seconds pass. The timeout is clamped to the configured
// maximum so a wait cannot outlive the caller's handoff deadline.
func (e *Engine) Wait(ctx context.Context, identifier string, timeout float64, exists bool) (Result, error) {
	app := e.app()
	if app == nil {
		return Result{}, ErrNoApp
	}
	if identifier == "" {
		return Result{}, ErrMissingIdentifier
	}

	limit := seconds(timeout)
	if limit > e.maxWait {
		limit = e.maxWait
	}
	deadline := time.Now().Add(limit)
	q := Query{Identifier: identifier}
	for {
		_, err := Resolve(app, q)
		if (err == nil) == exists {
			return succeeded, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Result{Success: false, TimedOut: true}, nil
		}
		step := e.poll
		if step > remaining {
			step = remaining
		}
		select {
		case <-ctx.Done():
			return Result{Success: false, TimedOut: true}, nil
		case <-time.After(step):
		}
	}
}

// Exists reports whether the query resolves to an existing element.
func (e *Engine) Exists(q Query) ExistsResult {
	el, err := Resolve(e.app(), q)
	return ExistsResult{Exists: err == nil && el.Exists()}
}

// Info returns the detail record of the resolved element.
func (e *Engine) Info(q Query) (Info, error) {
	el, err := Resolve(e.app(), q)
	if err != nil {
		return Info{}, err
	}
	value, _ := el.Value()
	return Info{
		Identifier:       el.Identifier(),
		Label:            el.Label(),
		Value:            value,
		PlaceholderValue: el.PlaceholderValue(),
		Type:             el.Kind().String(),
		IsEnabled:        el.IsEnabled(),
		IsHittable:       el.IsHittable(),
		IsSelected:       el.IsSelected(),
		Frame:            el.Frame(),
	}, nil
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
