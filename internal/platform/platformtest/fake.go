// Package platformtest provides an in-memory platform.Provider for tests.
// Every backend records the calls it receives so tests can assert on the
// exact input the engine synthesized.
package platformtest

import (
	"fmt"
	"image"
	"sync"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
)

// Click is one recorded pointer click.
type Click struct {
	X, Y   int
	Button platform.MouseButton
}

// Launch is one recorded process/URL launch.
type Launch struct {
	Target  string
	AppPath string
	IsURL   bool
}

// Fake implements every platform interface against in-memory state.
type Fake struct {
	mu sync.Mutex

	// Configured state.
	WindowList  []platform.Window
	ProcessList []platform.Process
	Active      platform.Window
	Desktop     []model.Element
	WindowTrees map[int][]model.Element // keyed by window PID
	ClipText    string

	// CopySource, when set, lands in ClipText whenever a ctrl+c combo is
	// pressed, the way a copy fills a real clipboard.
	CopySource string

	// Failure injection.
	ClickErr   error
	InvokeErr  error
	LaunchErr  error
	TreeErr    error
	ClipErr    error
	WindowsErr error

	// OnClick runs after each recorded click; tests use it to mutate the
	// tree the way a real UI would react.
	OnClick func(x, y int)

	// Recorded calls.
	Clicks   []Click
	Typed    []TypedText
	Combos   [][]string
	Focused  []platform.Window
	Launches []Launch
	Invoked  []int
}

// TypedText is one recorded TypeText call.
type TypedText struct {
	Text    string
	DelayMs int
}

// Provider wires the fake into a platform.Provider. withTree controls
// whether the accessibility bridge is present.
func (f *Fake) Provider(withTree bool) *platform.Provider {
	p := &platform.Provider{
		Windows:   (*fakeWindows)(f),
		Input:     (*fakeInput)(f),
		Clipboard: (*fakeClipboard)(f),
		Launcher:  (*fakeLauncher)(f),
		Screens:   (*fakeScreens)(f),
	}
	if withTree {
		p.Tree = (*fakeTree)(f)
	}
	return p
}

type fakeWindows Fake

func (f *fakeWindows) ListWindows() ([]platform.Window, error) {
	if f.WindowsErr != nil {
		return nil, f.WindowsErr
	}
	return f.WindowList, nil
}

func (f *fakeWindows) ListProcesses() ([]platform.Process, error) {
	return f.ProcessList, nil
}

func (f *fakeWindows) ActiveWindow() (platform.Window, error) {
	if f.Active.Title == "" {
		return platform.Window{}, fmt.Errorf("no focused window")
	}
	return f.Active, nil
}

func (f *fakeWindows) FocusWindow(w platform.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Focused = append(f.Focused, w)
	return nil
}

type fakeInput Fake

func (f *fakeInput) Click(x, y int, button platform.MouseButton) error {
	if f.ClickErr != nil {
		return f.ClickErr
	}
	f.mu.Lock()
	f.Clicks = append(f.Clicks, Click{X: x, Y: y, Button: button})
	hook := f.OnClick
	f.mu.Unlock()
	if hook != nil {
		hook(x, y)
	}
	return nil
}

func (f *fakeInput) TypeText(text string, delayMs int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Typed = append(f.Typed, TypedText{Text: text, DelayMs: delayMs})
	return nil
}

func (f *fakeInput) KeyCombo(keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Combos = append(f.Combos, keys)
	if f.CopySource != "" && len(keys) == 2 && keys[0] == "ctrl" && keys[1] == "c" {
		f.ClipText = f.CopySource
	}
	return nil
}

type fakeClipboard Fake

func (f *fakeClipboard) ReadText() (string, error) {
	if f.ClipErr != nil {
		return "", f.ClipErr
	}
	return f.ClipText, nil
}

func (f *fakeClipboard) WriteText(text string) error {
	f.ClipText = text
	return nil
}

type fakeTree Fake

func (f *fakeTree) WindowElements(w platform.Window) ([]model.Element, error) {
	if f.TreeErr != nil {
		return nil, f.TreeErr
	}
	if tree, ok := f.WindowTrees[w.PID]; ok {
		return tree, nil
	}
	return nil, nil
}

func (f *fakeTree) DesktopElements(depth int) ([]model.Element, error) {
	if f.TreeErr != nil {
		return nil, f.TreeErr
	}
	return f.Desktop, nil
}

func (f *fakeTree) Invoke(w platform.Window, elementID int) error {
	if f.InvokeErr != nil {
		return f.InvokeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Invoked = append(f.Invoked, elementID)
	return nil
}

type fakeLauncher Fake

func (f *fakeLauncher) StartProcess(target, appPath string) error {
	if f.LaunchErr != nil {
		return f.LaunchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Launches = append(f.Launches, Launch{Target: target, AppPath: appPath})
	return nil
}

func (f *fakeLauncher) OpenURL(url, appPath string) error {
	if f.LaunchErr != nil {
		return f.LaunchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Launches = append(f.Launches, Launch{Target: url, AppPath: appPath, IsURL: true})
	return nil
}

type fakeScreens Fake

func (f *fakeScreens) Capture() (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 64, 64)), nil
}
