package model

import "testing"

func sampleTree() []Element {
	return []Element{
		{
			ID: 1, Name: "Window", ControlType: "Window",
			Children: []Element{
				{ID: 2, Name: "Toolbar", ControlType: "Pane", Children: []Element{
					{ID: 3, Name: "Address and search bar", ControlType: "Edit"},
					{ID: 4, Name: "Reload", ControlType: "Button"},
				}},
				{ID: 5, Name: "Submit Order", ControlType: "Button", Bounds: [4]int{100, 200, 80, 30}},
			},
		},
	}
}

func TestFindByID(t *testing.T) {
	tree := sampleTree()
	el := FindByID(tree, 4)
	if el == nil || el.Name != "Reload" {
		t.Fatalf("expected to find Reload by id 4, got %+v", el)
	}
	if FindByID(tree, 99) != nil {
		t.Error("expected nil for missing id")
	}
}

func TestElementCenter(t *testing.T) {
	el := Element{Bounds: [4]int{100, 200, 80, 30}}
	x, y := el.Center()
	if x != 140 || y != 215 {
		t.Errorf("expected center (140,215), got (%d,%d)", x, y)
	}
}

func TestTextContains(t *testing.T) {
	el := Element{Name: "Submit Order"}
	if !el.TextContains("submit") {
		t.Error("expected case-insensitive substring match on name")
	}
	el = Element{Value: "hello world"}
	if !el.TextContains("WORLD") {
		t.Error("expected match on value")
	}
	if el.TextContains("absent") {
		t.Error("expected no match")
	}
}

func TestWalkBreadthFirst_DepthLimit(t *testing.T) {
	tree := sampleTree()
	var visited []int
	WalkBreadthFirst(tree, 1, 0, func(el *Element, depth int) bool {
		visited = append(visited, el.ID)
		return true
	})
	// Depth 1 stops before the toolbar's children.
	for _, id := range visited {
		if id == 3 || id == 4 {
			t.Errorf("element %d is at depth 2, should not be visited", id)
		}
	}
	if len(visited) != 3 {
		t.Errorf("expected 3 elements at depth <= 1, got %d", len(visited))
	}
}

func TestWalkBreadthFirst_Order(t *testing.T) {
	tree := sampleTree()
	var visited []int
	WalkBreadthFirst(tree, 10, 0, func(el *Element, depth int) bool {
		visited = append(visited, el.ID)
		return true
	})
	want := []int{1, 2, 5, 3, 4}
	if len(visited) != len(want) {
		t.Fatalf("expected %d visits, got %d", len(want), len(visited))
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit %d: expected id %d, got %d", i, want[i], visited[i])
		}
	}
}

func TestCollectByType(t *testing.T) {
	tree := sampleTree()
	buttons := CollectByType(tree, "button", 10)
	if len(buttons) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(buttons))
	}
}

func TestCanonicalControlType(t *testing.T) {
	cases := map[string]string{
		"ButtonControl": "Button",
		"AXTextField":   "Edit",
		"Button":        "Button",
		"CustomControl": "CustomControl",
	}
	for raw, want := range cases {
		if got := CanonicalControlType(raw); got != want {
			t.Errorf("CanonicalControlType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestIsClickable(t *testing.T) {
	if !IsClickable("ButtonControl") {
		t.Error("ButtonControl should be clickable")
	}
	if !IsClickable("SplitButton") {
		t.Error("types containing 'button' should be clickable")
	}
	if IsClickable("Text") {
		t.Error("Text should not be clickable")
	}
}
