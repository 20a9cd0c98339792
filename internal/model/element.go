package model

import "strings"

// Element is one node of the accessibility tree as reported by the OS.
// A resolved element is a lookup result, not an owned handle: the underlying
// control can disappear or move between resolution and use.
type Element struct {
	ID          int       `json:"id"`
	Name        string    `json:"name,omitempty"`
	ControlType string    `json:"control_type,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	Value       string    `json:"value,omitempty"`
	PID         int       `json:"pid,omitempty"`
	Bounds      [4]int    `json:"bounds"` // [x, y, width, height]
	Visible     bool      `json:"visible,omitempty"`
	Children    []Element `json:"children,omitempty"`
}

// Text returns the element's visible text: the name when present,
// otherwise the value.
func (e Element) Text() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Value
}

// Center returns the screen coordinates of the element's bounding-box center.
func (e Element) Center() (int, int) {
	return e.Bounds[0] + e.Bounds[2]/2, e.Bounds[1] + e.Bounds[3]/2
}

// TextContains reports whether the element's name or value contains s,
// case-insensitively.
func (e Element) TextContains(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(strings.ToLower(e.Name), lower) ||
		strings.Contains(strings.ToLower(e.Value), lower)
}

// FindByID searches the tree recursively for an element with the given ID.
func FindByID(elements []Element, id int) *Element {
	for i := range elements {
		if elements[i].ID == id {
			return &elements[i]
		}
		if found := FindByID(elements[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// WalkBreadthFirst visits elements level by level down to maxDepth
// (inclusive; 0 means only the given elements). visit returning false stops
// the walk. maxChildren bounds how many children of each node are expanded;
// 0 means no bound.
func WalkBreadthFirst(elements []Element, maxDepth, maxChildren int, visit func(el *Element, depth int) bool) {
	type entry struct {
		el    *Element
		depth int
	}
	queue := make([]entry, 0, len(elements))
	for i := range elements {
		queue = append(queue, entry{&elements[i], 0})
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !visit(cur.el, cur.depth) {
			return
		}
		if cur.depth >= maxDepth {
			continue
		}
		children := cur.el.Children
		if maxChildren > 0 && len(children) > maxChildren {
			children = children[:maxChildren]
		}
		for i := range children {
			queue = append(queue, entry{&children[i], cur.depth + 1})
		}
	}
}

// CollectByType gathers every descendant (breadth-first, bounded depth)
// whose canonical control type matches ct case-insensitively.
func CollectByType(elements []Element, ct string, maxDepth int) []*Element {
	var out []*Element
	want := strings.ToLower(CanonicalControlType(ct))
	WalkBreadthFirst(elements, maxDepth, 0, func(el *Element, _ int) bool {
		if strings.ToLower(CanonicalControlType(el.ControlType)) == want {
			out = append(out, el)
		}
		return true
	})
	return out
}
