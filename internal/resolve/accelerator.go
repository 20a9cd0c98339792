package resolve

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/script"
)

// Dialog heuristic traversal bounds: deeper and wider than the generic
// chain because profile pickers bury their buttons in anonymous panes.
const (
	dialogSearchDepth   = 8
	dialogSearchBreadth = 15
	dialogMaxButtonText = 50
	dialogMaxShortText  = 30
	dialogMinShortText  = 2
)

// gridOffsets are the screen offsets around a dialog's center tried when
// structural search finds nothing clickable.
var gridOffsets = [][2]int{
	{0, 0},
	{-100, 0}, {-50, 0}, {50, 0}, {100, 0},
	{0, -50}, {0, -100}, {0, 50}, {0, 100},
	{-75, -75}, {75, -75}, {-75, 75}, {75, 75},
}

// accelerate applies recognized-application heuristics before the generic
// element chain. It reports whether it produced a result; a miss falls
// through to the generic chain.
func (r *Resolver) accelerate(win platform.Window, sel script.ElementSelector) (Target, bool) {
	name := strings.ToLower(sel.Name)
	switch {
	case strings.Contains(name, "address") || strings.Contains(name, "search"):
		return r.resolveAddressBar(win, sel)
	case r.matchesDialogKeyword(name):
		return r.clickDialogButton(win, sel)
	}
	return Target{}, false
}

func (r *Resolver) matchesDialogKeyword(text string) bool {
	for _, kw := range r.cfg.DialogKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// resolveAddressBar finds the browser's address/search field: Edit-typed
// controls first, then a fixed offset from the window's top edge.
func (r *Resolver) resolveAddressBar(win platform.Window, sel script.ElementSelector) (Target, bool) {
	if r.p.Tree != nil {
		tree, err := r.p.Tree.WindowElements(win)
		if err == nil {
			// Edit control with the exact declared name.
			if el := elementExact(tree, script.ElementSelector{Name: sel.Name, ControlType: "Edit"}); el != nil {
				return Target{Window: win, Element: el}, true
			}
			edits := model.CollectByType(tree, "Edit", elementSearchDepth)
			for _, el := range edits {
				if el.TextContains("address") || el.TextContains("search") {
					return Target{Window: win, Element: el}, true
				}
			}
			// Browsers expose a single main edit field; take the first.
			if len(edits) > 0 {
				return Target{Window: win, Element: edits[0]}, true
			}
		}
	}
	// Structural search exhausted: the bar sits a fixed offset below the
	// window's top edge.
	pt := platform.Point{
		X: win.Bounds.X + win.Bounds.Width/2,
		Y: win.Bounds.Y + r.cfg.AddressBarOffset,
	}
	r.log.Debug("address bar fallback offset", zap.Int("x", pt.X), zap.Int("y", pt.Y))
	return Target{Window: win, Point: &pt}, true
}

// clickDialogButton handles ambiguous confirmation/profile-style dialogs:
// it collects short-text keyword-matching candidates from a deep traversal,
// clicks the first plausible one, and verifies success by the dialog's
// characteristic children no longer appearing. If structure yields nothing
// it falls back to a grid of offsets around the window center, re-checking
// the dialog after each attempt.
func (r *Resolver) clickDialogButton(win platform.Window, sel script.ElementSelector) (Target, bool) {
	if r.p.Input == nil {
		return Target{}, false
	}

	var tree []model.Element
	if r.p.Tree != nil {
		tree, _ = r.p.Tree.WindowElements(win)
	}

	// Pass 1: keyword-matching clickable controls with short text; long
	// descriptive text is noise, not a button label.
	for _, el := range r.dialogCandidates(tree, dialogMaxButtonText, true) {
		if r.clickAndVerify(win, el) {
			return Target{Window: win, Clicked: true}, true
		}
	}

	// Pass 2: any short-text element that keyword-matches, clickable or not.
	for _, el := range r.dialogCandidates(tree, dialogMaxShortText, false) {
		if r.clickAndVerify(win, el) {
			return Target{Window: win, Clicked: true}, true
		}
	}

	// Pass 3: grid of offsets around the window center.
	center := win.Bounds.Center()
	for i, off := range gridOffsets {
		x, y := center.X+off[0], center.Y+off[1]
		if err := r.p.Input.Click(x, y, platform.MouseLeft); err != nil {
			continue
		}
		time.Sleep(r.cfg.DialogSettleDelay)
		if r.dialogGone(win) {
			r.log.Debug("dialog dismissed by grid click",
				zap.Int("attempt", i+1), zap.Int("x", x), zap.Int("y", y))
			return Target{Window: win, Clicked: true}, true
		}
	}
	return Target{}, false
}

// dialogCandidates returns keyword-matching elements with text shorter than
// maxText, in traversal order. clickableOnly restricts to button-like
// control types.
func (r *Resolver) dialogCandidates(tree []model.Element, maxText int, clickableOnly bool) []*model.Element {
	var out []*model.Element
	model.WalkBreadthFirst(tree, dialogSearchDepth, dialogSearchBreadth, func(el *model.Element, _ int) bool {
		text := strings.TrimSpace(el.Text())
		if len(text) <= dialogMinShortText || len(text) >= maxText {
			return true
		}
		if !r.matchesDialogKeyword(strings.ToLower(text)) {
			return true
		}
		if clickableOnly && !model.IsClickable(el.ControlType) {
			return true
		}
		out = append(out, el)
		return true
	})
	return out
}

// clickAndVerify clicks the candidate's center and checks whether the
// dialog's characteristic children disappeared.
func (r *Resolver) clickAndVerify(win platform.Window, el *model.Element) bool {
	x, y := el.Center()
	if err := r.p.Input.Click(x, y, platform.MouseLeft); err != nil {
		r.log.Debug("dialog candidate click failed", zap.Error(err))
		return false
	}
	time.Sleep(r.cfg.DialogSettleDelay)
	return r.dialogGone(win)
}

// dialogGone re-reads the window tree and reports whether no keyword
// element remains. An unreadable tree counts as success: the dialog may
// have closed together with its window.
func (r *Resolver) dialogGone(win platform.Window) bool {
	if r.p.Tree == nil {
		return true
	}
	tree, err := r.p.Tree.WindowElements(win)
	if err != nil {
		return true
	}
	gone := true
	model.WalkBreadthFirst(tree, dialogSearchDepth, dialogSearchBreadth, func(el *model.Element, _ int) bool {
		if r.matchesDialogKeyword(strings.ToLower(el.Text())) {
			gone = false
			return false
		}
		return true
	})
	return gone
}
