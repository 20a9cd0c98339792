package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles the platform backends for the current OS.
// Tree may be nil when the OS exposes no accessibility bridge; callers must
// treat element lookups as best-effort and fall back to window geometry.
type Provider struct {
	Windows   WindowManager
	Tree      TreeReader
	Input     Inputter
	Clipboard Clipboard
	Launcher  Launcher
	Screens   Screens
}

// ErrUnsupported is returned on platforms with no registered backend.
var ErrUnsupported = fmt.Errorf("uipilot is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/robo for the robotgo registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
