// Package resolve turns abstract target descriptions into concrete screen
// targets. Window and element lookup are each an ordered chain of fallback
// strategies; the first strategy that produces a result wins and the chain
// never backtracks.
package resolve

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/script"
)

// elementSearchDepth bounds descendant traversal during element lookup.
const elementSearchDepth = 8

// NotFoundError reports that every strategy in a lookup chain was
// exhausted. The click action treats it as the cue to fall back to a
// coordinate selector.
type NotFoundError struct {
	Kind   string // "window" or "element"
	Detail string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Detail)
}

// Target is a resolution result: an element handle within its window, a
// bare screen point, or nothing at all when Clicked reports that a
// heuristic already performed the click itself.
type Target struct {
	Window  platform.Window
	Element *model.Element
	Point   *platform.Point
	Clicked bool
}

// Config tunes the resolver's heuristics.
type Config struct {
	// BrowserSignatures mark window titles recognized as browsers, which
	// unlocks the address-bar and dialog accelerators.
	BrowserSignatures []string

	// DialogKeywords is the allow-list the confirmation-dialog heuristic
	// matches candidate button text against.
	DialogKeywords []string

	// DialogSettleDelay is how long to wait after a heuristic click before
	// verifying that the dialog reacted.
	DialogSettleDelay time.Duration

	// AddressBarOffset is the fixed pixel offset from the window's top
	// edge used when no address-bar control can be found structurally.
	AddressBarOffset int
}

// DefaultConfig returns the heuristic settings that match stock browsers.
func DefaultConfig() Config {
	return Config{
		BrowserSignatures: []string{"chrome", "edge", "firefox"},
		DialogKeywords:    []string{"profile", "open", "sign", "start"},
		DialogSettleDelay: 800 * time.Millisecond,
		AddressBarOffset:  80,
	}
}

// Resolver owns the window and element fallback chains.
type Resolver struct {
	p   *platform.Provider
	cfg Config
	log *zap.Logger
}

// New returns a resolver bound to a platform provider.
func New(p *platform.Provider, cfg Config, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.BrowserSignatures) == 0 {
		cfg.BrowserSignatures = DefaultConfig().BrowserSignatures
	}
	if len(cfg.DialogKeywords) == 0 {
		cfg.DialogKeywords = DefaultConfig().DialogKeywords
	}
	if cfg.DialogSettleDelay <= 0 {
		cfg.DialogSettleDelay = DefaultConfig().DialogSettleDelay
	}
	if cfg.AddressBarOffset <= 0 {
		cfg.AddressBarOffset = DefaultConfig().AddressBarOffset
	}
	return &Resolver{p: p, cfg: cfg, log: log}
}

// Resolve runs the full chain: window lookup, browser accelerator, then the
// generic element chain. Exhaustion yields a NotFoundError, never a panic.
func (r *Resolver) Resolve(sel script.ElementSelector) (Target, error) {
	win, err := r.Window(sel)
	if err != nil {
		return Target{}, err
	}

	if r.isBrowserWindow(win) {
		if t, ok := r.accelerate(win, sel); ok {
			return t, nil
		}
	}

	el, err := r.Element(win, sel)
	if err != nil {
		return Target{Window: win}, err
	}
	return Target{Window: win, Element: el}, nil
}

func (r *Resolver) isBrowserWindow(w platform.Window) bool {
	title := strings.ToLower(w.Title)
	for _, sig := range r.cfg.BrowserSignatures {
		if strings.Contains(title, sig) {
			return true
		}
	}
	return false
}
