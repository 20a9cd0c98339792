package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/script"
)

// elementStrategy is one fallback step of the element chain.
type elementStrategy struct {
	name    string
	attempt func(tree []model.Element, sel script.ElementSelector) *model.Element
}

// Element resolves the selector to an element within the chosen window,
// trying each strategy in order.
func (r *Resolver) Element(win platform.Window, sel script.ElementSelector) (*model.Element, error) {
	if r.p.Tree == nil {
		return nil, &NotFoundError{Kind: "element", Detail: "accessibility tree unavailable"}
	}
	tree, err := r.p.Tree.WindowElements(win)
	if err != nil {
		return nil, &NotFoundError{Kind: "element", Detail: err.Error()}
	}

	strategies := []elementStrategy{
		{name: "exact", attempt: elementExact},
		{name: "name-search", attempt: elementByNameSearch},
		{name: "by-type", attempt: elementByType},
		{name: "broad-search", attempt: elementBroadSearch},
	}
	for _, st := range strategies {
		if el := st.attempt(tree, sel); el != nil {
			r.log.Debug("element resolved",
				zap.String("strategy", st.name),
				zap.String("text", el.Text()),
				zap.String("control_type", el.ControlType))
			return el, nil
		}
	}
	return nil, &NotFoundError{Kind: "element", Detail: describeSelector(sel)}
}

// elementExact is the direct structured query: exact name plus, when
// declared, matching control type.
func elementExact(tree []model.Element, sel script.ElementSelector) *model.Element {
	if sel.Name == "" {
		return nil
	}
	var found *model.Element
	model.WalkBreadthFirst(tree, elementSearchDepth, 0, func(el *model.Element, _ int) bool {
		if el.Name != sel.Name {
			return true
		}
		if sel.ControlType != "" && !controlTypeMatches(el.ControlType, sel.ControlType) {
			return true
		}
		found = el
		return false
	})
	return found
}

// elementByNameSearch is the breadth-first descendant search for a control
// whose visible text contains the name, case-insensitively.
func elementByNameSearch(tree []model.Element, sel script.ElementSelector) *model.Element {
	if sel.Name == "" {
		return nil
	}
	var found *model.Element
	model.WalkBreadthFirst(tree, elementSearchDepth, 0, func(el *model.Element, _ int) bool {
		if el.TextContains(sel.Name) {
			found = el
			return false
		}
		return true
	})
	return found
}

// elementByType collects all descendants of the declared control type,
// preferring one whose text contains the name, else the first.
func elementByType(tree []model.Element, sel script.ElementSelector) *model.Element {
	if sel.ControlType == "" {
		return nil
	}
	var matches []*model.Element
	model.WalkBreadthFirst(tree, elementSearchDepth, 0, func(el *model.Element, _ int) bool {
		if controlTypeMatches(el.ControlType, sel.ControlType) {
			matches = append(matches, el)
		}
		return true
	})
	if len(matches) == 0 {
		return nil
	}
	if sel.Name != "" {
		for _, el := range matches {
			if el.TextContains(sel.Name) {
				return el
			}
		}
	}
	return matches[0]
}

// elementBroadSearch is the last resort: any descendant of any type whose
// text contains the name.
func elementBroadSearch(tree []model.Element, sel script.ElementSelector) *model.Element {
	if sel.Name == "" {
		return nil
	}
	var found *model.Element
	model.WalkBreadthFirst(tree, elementSearchDepth, 0, func(el *model.Element, _ int) bool {
		if el.Text() != "" && el.TextContains(sel.Name) {
			found = el
			return false
		}
		return true
	})
	return found
}

func controlTypeMatches(have, want string) bool {
	return strings.EqualFold(model.CanonicalControlType(have), model.CanonicalControlType(want))
}
