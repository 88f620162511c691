package platform

import "fmt"

// Direction is a swipe direction.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// InvalidDirectionError reports a direction outside up/down/left/right.
type InvalidDirectionError struct {
	Value string
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid direction: %s", e.Value)
}

// ParseDirection converts a request value to a Direction. Matching is exact.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return d, nil
	default:
		return "", &InvalidDirectionError{Value: s}
	}
}

// AppState is the run state of an application.
type AppState int

const (
	AppStateUnknown AppState = iota
	AppStateNotRunning
	AppStateRunningBackgroundSuspended
	AppStateRunningBackground
	AppStateRunningForeground
)

var appStateNames = map[AppState]string{
	AppStateUnknown:                    "unknown",
	AppStateNotRunning:                 "notRunning",
	AppStateRunningBackgroundSuspended: "runningBackgroundSuspended",
	AppStateRunningBackground:          "runningBackground",
	AppStateRunningForeground:          "runningForeground",
}

func (s AppState) String() string {
	if name, ok := appStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AppState(%d)", int(s))
}

// Running reports whether the app can be attached to.
func (s AppState) Running() bool {
	return s == AppStateRunningForeground || s == AppStateRunningBackground
}

// ParseAppState converts a state name to an AppState.
func ParseAppState(s string) (AppState, error) {
	for state, name := range appStateNames {
		if name == s {
			return state, nil
		}
	}
	return AppStateUnknown, fmt.Errorf("unknown app state: %q", s)
}

// DeleteKey is the key sequence for one backspace key event.
const DeleteKey = "\u007f"
