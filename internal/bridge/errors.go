package bridge

import (
	"errors"

	"github.com/mj1618/simu-bridge/internal/platform"
)

// Operation errors. Their messages are part of the wire protocol and are sent
// to clients verbatim, so they are never wrapped.
var (
	ErrNoApp              = errors.New("no app attached")
	ErrElementNotFound    = errors.New("element not found")
	ErrNoTarget           = errors.New("no target")
	ErrMissingDirection   = errors.New("missing direction")
	ErrMissingText        = errors.New("missing text")
	ErrMissingIdentifier  = errors.New("must specify identifier")
	ErrMissingCoordinates = errors.New("missing coordinates (fromX, fromY, toX, toY)")
)

// Attach errors. These are request-level failures (HTTP 400).
var (
	ErrMissingBundleID = errors.New("missing bundleIdentifier")
	ErrAppNotRunning   = errors.New("app not running or not found")
)

// InvalidDirectionError is returned for a direction outside up/down/left/right.
type InvalidDirectionError = platform.InvalidDirectionError
