package poll

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
)

// elementSearchDepth bounds the global tree traversal for element
// conditions.
const elementSearchDepth = 10

// Conditions builds the concrete predicates wait actions poll on.
type Conditions struct {
	provider *platform.Provider
	log      *zap.Logger
}

// NewConditions returns a predicate factory bound to a platform provider.
func NewConditions(p *platform.Provider, log *zap.Logger) *Conditions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conditions{provider: p, log: log}
}

// URLMatches reads the foreground browser's address bar through the
// clipboard (focus bar, select all, copy) and compares it against expected.
// exact requires equality, otherwise substring containment.
func (c *Conditions) URLMatches(expected string, exact bool) Predicate {
	return func() (bool, error) {
		url, err := c.readAddressBar()
		if err != nil {
			return false, err
		}
		if exact {
			return url == expected, nil
		}
		return strings.Contains(url, expected), nil
	}
}

func (c *Conditions) readAddressBar() (string, error) {
	in := c.provider.Input
	if in == nil || c.provider.Clipboard == nil {
		return "", fmt.Errorf("input or clipboard unavailable")
	}
	// A stale clipboard value must not satisfy the predicate; clear it
	// before the copy.
	if err := c.provider.Clipboard.WriteText(""); err != nil {
		return "", fmt.Errorf("clear clipboard: %w", err)
	}
	// Ctrl+L focuses the address bar in every mainstream browser.
	if err := in.KeyCombo([]string{"ctrl", "l"}); err != nil {
		return "", err
	}
	time.Sleep(200 * time.Millisecond)
	if err := in.KeyCombo([]string{"ctrl", "a"}); err != nil {
		return "", err
	}
	time.Sleep(100 * time.Millisecond)
	if err := in.KeyCombo([]string{"ctrl", "c"}); err != nil {
		return "", err
	}
	time.Sleep(200 * time.Millisecond)

	url, err := c.provider.Clipboard.ReadText()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	// Deselect so the page is back in its pre-check state.
	if err := in.KeyCombo([]string{"escape"}); err != nil {
		c.log.Debug("escape after address read failed", zap.Error(err))
	}
	return url, nil
}

// ElementExists searches the global accessibility tree, bounded in depth,
// for an element named name. The not_exists condition is Not() of this
// predicate.
func (c *Conditions) ElementExists(name string) Predicate {
	return func() (bool, error) {
		if c.provider.Tree == nil {
			return false, fmt.Errorf("accessibility tree unavailable")
		}
		elements, err := c.provider.Tree.DesktopElements(elementSearchDepth)
		if err != nil {
			return false, err
		}
		found := false
		model.WalkBreadthFirst(elements, elementSearchDepth, 0, func(el *model.Element, _ int) bool {
			if el.Name == name {
				found = true
				return false
			}
			return true
		})
		return found, nil
	}
}

// ForCondition maps a script condition to its predicate.
func (c *Conditions) ForCondition(condType, value string) (Predicate, error) {
	switch condType {
	case "url.contains":
		return c.URLMatches(value, false), nil
	case "url.is":
		return c.URLMatches(value, true), nil
	case "uia.exists":
		return c.ElementExists(value), nil
	case "uia.not_exists":
		return Not(c.ElementExists(value)), nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", condType)
	}
}
