// Package input synthesizes pointer and keyboard events against resolved
// targets, with retry around flaky element clicks.
package input

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/vars"
)

// clickOffsets are the pixel nudges tried around an element's center when
// the direct click is rejected. Controls with decorative borders sometimes
// swallow the exact center.
var clickOffsets = [][2]int{
	{0, 0},
	{5, 0}, {-5, 0},
	{0, 5}, {0, -5},
	{3, 3}, {-3, -3},
}

// DefaultTypeDelay is the per-character delay applied when a type action
// declares none.
const DefaultTypeDelay = 10 * time.Millisecond

// ErrDispatch marks input events the OS rejected after every retry;
// matchable with errors.Is through wrapped click errors.
var ErrDispatch = errors.New("input dispatch failed")

// Synthesizer turns resolved targets into OS input events.
type Synthesizer struct {
	p   *platform.Provider
	log *zap.Logger

	// FocusSettle is how long to wait after focusing a window before
	// typing into it.
	FocusSettle time.Duration

	// TypeDelay is the per-character delay used when a type action
	// declares none.
	TypeDelay time.Duration
}

// New returns a synthesizer bound to a platform provider.
func New(p *platform.Provider, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{
		p:           p,
		log:         log,
		FocusSettle: 500 * time.Millisecond,
		TypeDelay:   DefaultTypeDelay,
	}
}

// ClickElement clicks the element's center, nudging the point through a
// small offset pattern when the pointer event is rejected. When every
// offset fails and the accessibility bridge is present, it falls back to
// invoking the element's default action directly.
func (s *Synthesizer) ClickElement(win platform.Window, el *model.Element, button platform.MouseButton) error {
	if s.p.Input == nil {
		return platform.ErrUnsupported
	}
	cx, cy := el.Center()
	var lastErr error
	for _, off := range clickOffsets {
		err := s.p.Input.Click(cx+off[0], cy+off[1], button)
		if err == nil {
			return nil
		}
		lastErr = err
		s.log.Debug("click rejected, nudging",
			zap.Int("dx", off[0]), zap.Int("dy", off[1]), zap.Error(err))
	}
	if s.p.Tree != nil {
		if err := s.p.Tree.Invoke(win, el.ID); err == nil {
			s.log.Debug("pointer click failed, invoked element instead", zap.Int("id", el.ID))
			return nil
		}
	}
	return fmt.Errorf("click %q: %w: %w", el.Text(), ErrDispatch, lastErr)
}

// ClickPoint clicks an absolute screen coordinate.
func (s *Synthesizer) ClickPoint(x, y int, button platform.MouseButton) error {
	if s.p.Input == nil {
		return platform.ErrUnsupported
	}
	return s.p.Input.Click(x, y, button)
}

// Shortcut presses a combination written as "+"-joined key names,
// e.g. "ctrl+l" or "alt+f4".
func (s *Synthesizer) Shortcut(combo string) error {
	if s.p.Input == nil {
		return platform.ErrUnsupported
	}
	parts := strings.Split(combo, "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" {
			return fmt.Errorf("malformed shortcut %q", combo)
		}
		keys = append(keys, key)
	}
	return s.p.Input.KeyCombo(keys)
}

// TypeText substitutes variables in text and types the result character by
// character. Substitution failures abort before any character is sent.
// When focusApp is set, the first window whose title contains it is focused
// first and given time to settle.
func (s *Synthesizer) TypeText(text string, delay time.Duration, focusApp string, store *vars.Store) error {
	if s.p.Input == nil {
		return platform.ErrUnsupported
	}
	resolved, err := store.Substitute(text)
	if err != nil {
		return err
	}
	if focusApp != "" {
		if err := s.Focus(focusApp); err != nil {
			return err
		}
	}
	if delay <= 0 {
		delay = s.TypeDelay
	}
	if delay <= 0 {
		delay = DefaultTypeDelay
	}
	return s.p.Input.TypeText(resolved, int(delay/time.Millisecond))
}

// Focus brings the first window whose title contains fragment to the
// foreground and waits for it to settle. A window that already has focus
// is left alone.
func (s *Synthesizer) Focus(fragment string) error {
	if s.p.Windows == nil {
		return platform.ErrUnsupported
	}
	want := strings.ToLower(fragment)
	if w, err := s.p.Windows.ActiveWindow(); err == nil &&
		strings.Contains(strings.ToLower(w.Title), want) {
		return nil
	}
	windows, err := s.p.Windows.ListWindows()
	if err != nil {
		return fmt.Errorf("focus %q: %w", fragment, err)
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), want) {
			if err := s.p.Windows.FocusWindow(w); err != nil {
				return fmt.Errorf("focus %q: %w", fragment, err)
			}
			time.Sleep(s.FocusSettle)
			return nil
		}
	}
	return fmt.Errorf("focus %q: no window title matches", fragment)
}
