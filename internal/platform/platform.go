package platform

import (
	"image"

	"github.com/mkarlsen/uipilot/internal/model"
)

// WindowManager enumerates and focuses top-level windows.
type WindowManager interface {
	// ListWindows returns all top-level windows.
	ListWindows() ([]Window, error)

	// ListProcesses returns the running processes.
	ListProcesses() ([]Process, error)

	// ActiveWindow returns the currently focused window.
	ActiveWindow() (Window, error)

	// FocusWindow brings the given window to the foreground.
	FocusWindow(w Window) error
}

// TreeReader reads the UI element tree from the OS accessibility layer.
// It is optional: a provider without an accessibility bridge leaves it nil
// and resolution degrades to window-geometry fallbacks.
type TreeReader interface {
	// WindowElements returns the element tree rooted at the given window.
	WindowElements(w Window) ([]model.Element, error)

	// DesktopElements returns the element tree of all top-level surfaces,
	// traversed to at most depth levels.
	DesktopElements(depth int) ([]model.Element, error)

	// Invoke performs the element's native default action (press, invoke).
	Invoke(w Window, elementID int) error
}

// Inputter simulates mouse and keyboard input.
type Inputter interface {
	Click(x, y int, button MouseButton) error
	TypeText(text string, delayMs int) error
	KeyCombo(keys []string) error
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}

// Launcher starts processes and opens URLs.
type Launcher interface {
	// StartProcess launches target, or appPath when given.
	StartProcess(target, appPath string) error

	// OpenURL opens url in appPath, or the default browser when empty.
	OpenURL(url, appPath string) error
}

// Screens captures the display, used for failure snapshots.
type Screens interface {
	Capture() (image.Image, error)
}
