package resolve

import (
	"errors"
	"testing"
	"time"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/platform/platformtest"
	"github.com/mkarlsen/uipilot/internal/script"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DialogSettleDelay = time.Millisecond
	return cfg
}

func newTestResolver(f *platformtest.Fake, withTree bool) *Resolver {
	return New(f.Provider(withTree), testConfig(), nil)
}

var testWindows = []platform.Window{
	{App: "editor", PID: 10, Title: "Untitled - Editor", Class: "EditorFrame", Visible: true},
	{App: "chrome", PID: 20, Title: "New Tab - Google Chrome", Class: "Chrome_WidgetWin_1", Visible: true},
	{App: "helper", PID: 30, Title: "", Class: "HiddenHelper", Visible: false},
}

func TestWindowChainPriority(t *testing.T) {
	f := &platformtest.Fake{
		WindowList: testWindows,
		ProcessList: []platform.Process{
			{PID: 10, Name: "editor.exe"},
			{PID: 20, Name: "chrome.exe"},
		},
	}
	r := newTestResolver(f, true)

	tests := []struct {
		name    string
		sel     script.ElementSelector
		wantPID int
	}{
		{
			name:    "process name wins over everything",
			sel:     script.ElementSelector{ProcessName: "editor.exe", ClassName: "Chrome_WidgetWin_1"},
			wantPID: 10,
		},
		{
			name:    "process match is case-insensitive and exe-suffix tolerant",
			sel:     script.ElementSelector{ProcessName: "Editor"},
			wantPID: 10,
		},
		{
			name:    "class match when process misses",
			sel:     script.ElementSelector{ProcessName: "gone.exe", ClassName: "EditorFrame"},
			wantPID: 10,
		},
		{
			name:    "browser signature when neither process nor class hit",
			sel:     script.ElementSelector{Name: "Submit"},
			wantPID: 20,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := r.Window(tc.sel)
			if err != nil {
				t.Fatalf("Window: %v", err)
			}
			if w.PID != tc.wantPID {
				t.Errorf("resolved PID %d, want %d", w.PID, tc.wantPID)
			}
		})
	}
}

func TestWindowFallbackVisibleTitled(t *testing.T) {
	f := &platformtest.Fake{
		WindowList: []platform.Window{
			{PID: 1, Title: "abc", Visible: true},
			{PID: 2, Title: "Settings Panel", Visible: false},
			{PID: 3, Title: "Mail Client", Visible: true},
		},
	}
	r := newTestResolver(f, false)
	w, err := r.Window(script.ElementSelector{Name: "Inbox"})
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if w.PID != 3 {
		t.Errorf("fallback picked PID %d, want 3 (visible, title longer than 3 chars)", w.PID)
	}
}

func TestWindowNotFound(t *testing.T) {
	f := &platformtest.Fake{}
	r := newTestResolver(f, false)
	_, err := r.Window(script.ElementSelector{Name: "anything"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "window" {
		t.Fatalf("want window NotFoundError, got %v", err)
	}
}

func TestWindowListError(t *testing.T) {
	f := &platformtest.Fake{WindowsErr: errors.New("enumeration broke")}
	r := newTestResolver(f, false)
	_, err := r.Window(script.ElementSelector{})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError wrapping the list failure, got %v", err)
	}
}

func editorTree() []model.Element {
	return []model.Element{
		{ID: 1, Name: "window root", ControlType: "Pane", Children: []model.Element{
			{ID: 2, Name: "File", ControlType: "MenuItem", Bounds: [4]int{0, 0, 40, 20}},
			{ID: 3, Name: "Save Document", ControlType: "Button", Bounds: [4]int{100, 0, 80, 20}},
			{ID: 4, Name: "", Value: "draft contents", ControlType: "Edit", Bounds: [4]int{0, 40, 400, 300}},
			{ID: 5, Name: "Status: saved recently", ControlType: "Text", Bounds: [4]int{0, 350, 400, 20}},
		}},
	}
}

func TestElementChain(t *testing.T) {
	editorWin := testWindows[0]
	f := &platformtest.Fake{
		WindowTrees: map[int][]model.Element{editorWin.PID: editorTree()},
	}
	r := newTestResolver(f, true)

	tests := []struct {
		name   string
		sel    script.ElementSelector
		wantID int
	}{
		{
			name:   "exact name and type",
			sel:    script.ElementSelector{Name: "Save Document", ControlType: "Button"},
			wantID: 3,
		},
		{
			name:   "exact name with UIA-style type alias",
			sel:    script.ElementSelector{Name: "Save Document", ControlType: "ButtonControl"},
			wantID: 3,
		},
		{
			name:   "contains search when exact misses",
			sel:    script.ElementSelector{Name: "save doc"},
			wantID: 3,
		},
		{
			name:   "by declared type when name misses entirely",
			sel:    script.ElementSelector{Name: "nonexistent", ControlType: "Edit"},
			wantID: 4,
		},
		{
			name:   "broad search matches value text of any type",
			sel:    script.ElementSelector{Name: "draft"},
			wantID: 4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			el, err := r.Element(editorWin, tc.sel)
			if err != nil {
				t.Fatalf("Element: %v", err)
			}
			if el.ID != tc.wantID {
				t.Errorf("resolved element %d, want %d", el.ID, tc.wantID)
			}
		})
	}
}

func TestElementChainStableAcrossSelectors(t *testing.T) {
	// The same control reached through different chain stages must be the
	// same node, so weakening a selector never redirects an action.
	editorWin := testWindows[0]
	f := &platformtest.Fake{
		WindowTrees: map[int][]model.Element{editorWin.PID: editorTree()},
	}
	r := newTestResolver(f, true)

	exact, err := r.Element(editorWin, script.ElementSelector{Name: "Save Document", ControlType: "Button"})
	if err != nil {
		t.Fatalf("exact: %v", err)
	}
	loose, err := r.Element(editorWin, script.ElementSelector{Name: "Save Doc"})
	if err != nil {
		t.Fatalf("loose: %v", err)
	}
	if exact.ID != loose.ID {
		t.Errorf("exact selector hit %d but loose selector hit %d", exact.ID, loose.ID)
	}
}

func TestElementNotFound(t *testing.T) {
	editorWin := testWindows[0]
	f := &platformtest.Fake{
		WindowTrees: map[int][]model.Element{editorWin.PID: editorTree()},
	}
	r := newTestResolver(f, true)
	_, err := r.Element(editorWin, script.ElementSelector{Name: "does not exist anywhere"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "element" {
		t.Fatalf("want element NotFoundError, got %v", err)
	}
}

func TestElementWithoutTree(t *testing.T) {
	f := &platformtest.Fake{}
	r := newTestResolver(f, false)
	_, err := r.Element(testWindows[0], script.ElementSelector{Name: "Save"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("want NotFoundError when accessibility bridge is absent, got %v", err)
	}
}

func chromeTree() []model.Element {
	return []model.Element{
		{ID: 1, Name: "Chrome", ControlType: "Pane", Children: []model.Element{
			{ID: 2, Name: "Reload", ControlType: "Button", Bounds: [4]int{10, 50, 30, 30}},
			{ID: 3, Name: "Address and search bar", ControlType: "Edit", Bounds: [4]int{50, 50, 500, 30}},
		}},
	}
}

func TestAddressBarExactEdit(t *testing.T) {
	chromeWin := testWindows[1]
	f := &platformtest.Fake{
		WindowList:  testWindows,
		WindowTrees: map[int][]model.Element{chromeWin.PID: chromeTree()},
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "Address and search bar"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Element == nil || target.Element.ID != 3 {
		t.Fatalf("want address bar element 3, got %+v", target.Element)
	}
}

func TestAddressBarFirstEditFallback(t *testing.T) {
	chromeWin := testWindows[1]
	tree := []model.Element{
		{ID: 1, Name: "Chrome", ControlType: "Pane", Children: []model.Element{
			{ID: 2, Name: "omnibox", ControlType: "Edit", Bounds: [4]int{50, 50, 500, 30}},
		}},
	}
	f := &platformtest.Fake{
		WindowList:  testWindows,
		WindowTrees: map[int][]model.Element{chromeWin.PID: tree},
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "search the web"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Element == nil || target.Element.ID != 2 {
		t.Fatalf("want the only Edit control, got %+v", target.Element)
	}
}

func TestAddressBarMacRoles(t *testing.T) {
	// macOS reports edit fields as AXTextField; the accelerator must treat
	// them like any other Edit control.
	chromeWin := testWindows[1]
	tree := []model.Element{
		{ID: 1, Name: "Chrome", ControlType: "AXGroup", Children: []model.Element{
			{ID: 2, Name: "omnibox", ControlType: "AXTextField", Bounds: [4]int{50, 50, 500, 30}},
		}},
	}
	f := &platformtest.Fake{
		WindowList:  testWindows,
		WindowTrees: map[int][]model.Element{chromeWin.PID: tree},
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "search the web"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Element == nil || target.Element.ID != 2 {
		t.Fatalf("want the AXTextField edit control, got %+v", target.Element)
	}
	if target.Point != nil {
		t.Error("structural match found, geometry fallback must not fire")
	}
}

func TestAddressBarGeometryFallback(t *testing.T) {
	chromeWin := platform.Window{
		App: "chrome", PID: 20, Title: "New Tab - Google Chrome", Visible: true,
		Bounds: platform.Bounds{X: 100, Y: 200, Width: 800, Height: 600},
	}
	f := &platformtest.Fake{WindowList: []platform.Window{chromeWin}}
	r := newTestResolver(f, false)
	target, err := r.Resolve(script.ElementSelector{Name: "address bar"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Point == nil {
		t.Fatal("want a geometry point when no tree is available")
	}
	if target.Point.X != 500 || target.Point.Y != 280 {
		t.Errorf("point = (%d, %d), want (500, 280)", target.Point.X, target.Point.Y)
	}
}

func TestDialogButtonClicked(t *testing.T) {
	chromeWin := testWindows[1]
	dialog := []model.Element{
		{ID: 1, Name: "Chrome", ControlType: "Pane", Children: []model.Element{
			{ID: 2, Name: "Who's using Chrome? Pick a profile to continue browsing", ControlType: "Text", Bounds: [4]int{100, 100, 400, 40}},
			{ID: 3, Name: "Open Profile", ControlType: "Button", Bounds: [4]int{200, 300, 100, 30}},
		}},
	}
	f := &platformtest.Fake{
		WindowList:  testWindows,
		WindowTrees: map[int][]model.Element{chromeWin.PID: dialog},
	}
	f.OnClick = func(x, y int) {
		// The dialog closes once its button is pressed.
		f.WindowTrees[chromeWin.PID] = chromeTree()
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "Open Profile"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !target.Clicked {
		t.Fatal("want Clicked target from the dialog heuristic")
	}
	if len(f.Clicks) != 1 {
		t.Fatalf("want exactly one click, got %d", len(f.Clicks))
	}
	if f.Clicks[0].X != 250 || f.Clicks[0].Y != 315 {
		t.Errorf("clicked (%d, %d), want button center (250, 315)", f.Clicks[0].X, f.Clicks[0].Y)
	}
}

func TestDialogGridFallback(t *testing.T) {
	chromeWin := platform.Window{
		App: "chrome", PID: 20, Title: "Google Chrome", Visible: true,
		Bounds: platform.Bounds{X: 0, Y: 0, Width: 600, Height: 400},
	}
	// Only a long descriptive text keyword-matches, so no button candidate
	// exists and the grid must be tried.
	dialog := []model.Element{
		{ID: 1, Name: "Chrome", ControlType: "Pane", Children: []model.Element{
			{ID: 2, Name: "Select a profile to open before you can start browsing the web", ControlType: "Text", Bounds: [4]int{100, 100, 400, 40}},
		}},
	}
	f := &platformtest.Fake{
		WindowList:  []platform.Window{chromeWin},
		WindowTrees: map[int][]model.Element{chromeWin.PID: dialog},
	}
	clicks := 0
	f.OnClick = func(x, y int) {
		clicks++
		if clicks == 3 {
			f.WindowTrees[chromeWin.PID] = nil
		}
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "Open profile"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !target.Clicked {
		t.Fatal("want Clicked target from the grid fallback")
	}
	if clicks != 3 {
		t.Errorf("grid stopped after %d clicks, want 3", clicks)
	}
}

func TestBrowserWindowGenericChain(t *testing.T) {
	// A selector with no accelerator hint uses the ordinary element chain
	// even inside a browser window.
	chromeWin := testWindows[1]
	f := &platformtest.Fake{
		WindowList:  testWindows,
		WindowTrees: map[int][]model.Element{chromeWin.PID: chromeTree()},
	}
	r := newTestResolver(f, true)
	target, err := r.Resolve(script.ElementSelector{Name: "Reload", ControlType: "Button"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if target.Element == nil || target.Element.ID != 2 {
		t.Fatalf("want Reload button, got %+v", target.Element)
	}
	if len(f.Clicks) != 0 {
		t.Errorf("generic resolution must not click, saw %d clicks", len(f.Clicks))
	}
}
