package platform

import (
	"fmt"
	"runtime"
)

// ErrUnsupported is returned when no automation backend has been registered.
var ErrUnsupported = fmt.Errorf("no UI automation backend available on %s/%s; use --fixture", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/fixture for the YAML fixture registration.
var NewProviderFunc func(source string) (Automation, error)

// NewProvider returns the registered automation backend.
func NewProvider(source string) (Automation, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(source)
}
