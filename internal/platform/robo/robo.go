// Package robo is the robotgo-backed platform provider. It covers window
// management, input synthesis, clipboard, launching, and screen capture.
// Accessibility tree reading has no portable robotgo equivalent, so Tree is
// left nil and resolution relies on the geometry fallbacks.
package robo

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/mkarlsen/uipilot/internal/platform"
)

func init() {
	platform.NewProviderFunc = newProvider
}

func newProvider() (*platform.Provider, error) {
	return &platform.Provider{
		Windows:   windowManager{},
		Input:     inputter{},
		Clipboard: clipboard{},
		Launcher:  launcher{},
		Screens:   screens{},
	}, nil
}

type windowManager struct{}

func (windowManager) ListProcesses() ([]platform.Process, error) {
	nps, err := robotgo.Process()
	if err != nil {
		return nil, fmt.Errorf("process enumeration failed: %w", err)
	}
	procs := make([]platform.Process, 0, len(nps))
	for _, np := range nps {
		procs = append(procs, platform.Process{PID: int(np.Pid), Name: np.Name})
	}
	return procs, nil
}

func (m windowManager) ListWindows() ([]platform.Window, error) {
	procs, err := m.ListProcesses()
	if err != nil {
		return nil, err
	}
	activeTitle := robotgo.GetTitle()

	var windows []platform.Window
	for _, p := range procs {
		title := robotgo.GetTitle(p.PID)
		if title == "" {
			continue
		}
		x, y, w, h := robotgo.GetBounds(p.PID)
		if w == 0 && h == 0 {
			continue
		}
		windows = append(windows, platform.Window{
			App:     p.Name,
			PID:     p.PID,
			Title:   title,
			Bounds:  platform.Bounds{X: x, Y: y, Width: w, Height: h},
			Focused: title == activeTitle,
			Visible: true,
		})
	}
	return windows, nil
}

func (m windowManager) ActiveWindow() (platform.Window, error) {
	windows, err := m.ListWindows()
	if err != nil {
		return platform.Window{}, err
	}
	for _, w := range windows {
		if w.Focused {
			return w, nil
		}
	}
	return platform.Window{}, fmt.Errorf("no focused window")
}

func (windowManager) FocusWindow(w platform.Window) error {
	if err := robotgo.ActivePid(w.PID); err != nil {
		return fmt.Errorf("activate pid %d: %w", w.PID, err)
	}
	return nil
}

type inputter struct{}

func (inputter) Click(x, y int, button platform.MouseButton) error {
	robotgo.Move(x, y)
	robotgo.MilliSleep(50)
	robotgo.Click(robotButton(button), false)
	return nil
}

func (inputter) TypeText(text string, delayMs int) error {
	if delayMs <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, r := range text {
		robotgo.TypeStr(string(r))
		robotgo.MilliSleep(delayMs)
	}
	return nil
}

func (inputter) KeyCombo(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty key combo")
	}
	// robotgo takes the key first and modifiers after: KeyTap("l", "ctrl").
	key := keys[len(keys)-1]
	mods := make([]interface{}, 0, len(keys)-1)
	for _, m := range keys[:len(keys)-1] {
		mods = append(mods, strings.ToLower(m))
	}
	return robotgo.KeyTap(strings.ToLower(key), mods...)
}

func robotButton(b platform.MouseButton) string {
	switch b {
	case platform.MouseRight:
		return "right"
	case platform.MouseMiddle:
		return "center"
	default:
		return "left"
	}
}

type clipboard struct{}

func (clipboard) ReadText() (string, error)   { return robotgo.ReadAll() }
func (clipboard) WriteText(text string) error { return robotgo.WriteAll(text) }

type screens struct{}

func (screens) Capture() (image.Image, error) {
	img := robotgo.CaptureImg()
	if img == nil {
		return nil, fmt.Errorf("screen capture failed")
	}
	return img, nil
}
