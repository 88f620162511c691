package bridge

import (
	"sync"

	"github.com/mj1618/simu-bridge/internal/platform"
)

// Session tracks the attached application. It holds the bundle identifier,
// never a live handle; handles are re-acquired inside each automation task.
//
// Only a successful Attach changes the session. There is no detach: the last
// successful attach wins until the process exits.
type Session struct {
	automation platform.Automation

	mu       sync.Mutex
	bundleID string
}

// NewSession returns an unattached session backed by automation.
func NewSession(automation platform.Automation) *Session {
	return &Session{automation: automation}
}

// Attach makes bundleID the current application if it is running. A failed
// attach leaves the previous attachment untouched.
func (s *Session) Attach(bundleID string) error {
	if bundleID == "" {
		return ErrMissingBundleID
	}
	if !s.automation.Application(bundleID).State().Running() {
		return ErrAppNotRunning
	}
	s.mu.Lock()
	s.bundleID = bundleID
	s.mu.Unlock()
	return nil
}

// BundleID returns the attached bundle identifier, or "" when unattached.
func (s *Session) BundleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundleID
}

// App returns a fresh handle to the attached application.
func (s *Session) App() (platform.Application, bool) {
	id := s.BundleID()
	if id == "" {
		return nil, false
	}
	return s.automation.Application(id), true
}
