package platform

import (
	"errors"
	"testing"
)

func TestParseDirection_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"up", DirectionUp},
		{"down", DirectionDown},
		{"left", DirectionLeft},
		{"right", DirectionRight},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if err != nil {
			t.Errorf("ParseDirection(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDirection_Invalid(t *testing.T) {
	tests := []string{"", "sideways", "Up", "UP", " up"}
	for _, s := range tests {
		_, err := ParseDirection(s)
		if err == nil {
			t.Errorf("ParseDirection(%q) should fail", s)
			continue
		}
		var dirErr *InvalidDirectionError
		if !errors.As(err, &dirErr) {
			t.Errorf("ParseDirection(%q): expected *InvalidDirectionError, got %T", s, err)
		}
	}
}

func TestInvalidDirectionError_Message(t *testing.T) {
	_, err := ParseDirection("sideways")
	if got, want := err.Error(), "invalid direction: sideways"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAppState_Running(t *testing.T) {
	tests := []struct {
		state AppState
		want  bool
	}{
		{AppStateUnknown, false},
		{AppStateNotRunning, false},
		{AppStateRunningBackgroundSuspended, false},
		{AppStateRunningBackground, true},
		{AppStateRunningForeground, true},
	}
	for _, tt := range tests {
		if got := tt.state.Running(); got != tt.want {
			t.Errorf("%s.Running() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestParseAppState_RoundTrip(t *testing.T) {
	for state := range appStateNames {
		got, err := ParseAppState(state.String())
		if err != nil {
			t.Fatalf("ParseAppState(%q): %v", state.String(), err)
		}
		if got != state {
			t.Errorf("ParseAppState(%q) = %v, want %v", state.String(), got, state)
		}
	}
	if _, err := ParseAppState("launching"); err == nil {
		t.Error("ParseAppState(\"launching\") should fail")
	}
}
