package model

import "strings"

// controlTypeMap normalizes the role names different OS accessibility
// layers report to the canonical control types used in selectors.
var controlTypeMap = map[string]string{
	// UI Automation
	"ButtonControl":    "Button",
	"EditControl":      "Edit",
	"TextControl":      "Text",
	"HyperlinkControl": "Hyperlink",
	"WindowControl":    "Window",
	"PaneControl":      "Pane",
	"MenuItemControl":  "MenuItem",
	"CheckBoxControl":  "CheckBox",
	"ListItemControl":  "ListItem",
	"DocumentControl":  "Document",
	// macOS accessibility
	"AXButton":      "Button",
	"AXTextField":   "Edit",
	"AXTextArea":    "Edit",
	"AXStaticText":  "Text",
	"AXLink":        "Hyperlink",
	"AXWindow":      "Window",
	"AXGroup":       "Pane",
	"AXMenuItem":    "MenuItem",
	"AXCheckBox":    "CheckBox",
	"AXRadioButton": "RadioButton",
	"AXWebArea":     "Document",
}

// clickableTypes are the control types the dialog heuristic treats as
// plausible click targets.
var clickableTypes = map[string]bool{
	"Button":      true,
	"Hyperlink":   true,
	"MenuItem":    true,
	"ListItem":    true,
	"RadioButton": true,
}

// CanonicalControlType converts a raw accessibility role to a canonical
// control type. Unknown roles pass through unchanged so exact selector
// matches on platform-specific types still work.
func CanonicalControlType(raw string) string {
	if ct, ok := controlTypeMap[raw]; ok {
		return ct
	}
	return raw
}

// IsClickable reports whether ct names a control type that normally accepts
// a click or invoke.
func IsClickable(ct string) bool {
	if clickableTypes[CanonicalControlType(ct)] {
		return true
	}
	lower := strings.ToLower(ct)
	return strings.Contains(lower, "button") || strings.Contains(lower, "link")
}
