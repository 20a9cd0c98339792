// Package script defines the declarative automation script format: an
// ordered list of tagged actions, validated once at load time.
package script

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ActionType tags an action variant.
type ActionType string

const (
	ActionStartProcess ActionType = "start_process"
	ActionClick        ActionType = "click"
	ActionTypeText     ActionType = "type_text"
	ActionLoad         ActionType = "load"
	ActionWaitFor      ActionType = "wait_for" // alias of load
	ActionWaitUser     ActionType = "wait_user"
	ActionSetVariable  ActionType = "set_variable"
	ActionWait         ActionType = "wait"
)

// Condition types.
const (
	CondURLContains    = "url.contains"
	CondURLIs          = "url.is"
	CondElementExists  = "uia.exists"
	CondElementMissing = "uia.not_exists"
)

// Script is an ordered sequence of actions.
type Script struct {
	Description string   `json:"description,omitempty"`
	Actions     []Action `json:"actions"`
}

// Action is the tagged union of all script action variants. Fields beyond
// Type are variant-specific; Validate checks that the required ones are set.
type Action struct {
	Type ActionType `json:"type"`

	// Common optional fields.
	Description       string  `json:"description,omitempty"`
	ContinueOnFailure bool    `json:"continue_on_failure,omitempty"`
	Delay             float64 `json:"delay,omitempty"` // seconds

	// start_process, click
	Target  string `json:"target,omitempty"`
	AppPath string `json:"app_path,omitempty"`

	// click
	Button             string              `json:"button,omitempty"`
	ElementSelector    *ElementSelector    `json:"element_selector,omitempty"`
	CoordinateSelector *CoordinateSelector `json:"coordinate_selector,omitempty"`
	KeyboardShortcut   string              `json:"keyboard_shortcut,omitempty"`

	// type_text, click
	FocusApp string `json:"focus_app,omitempty"`

	// type_text
	Text string `json:"text,omitempty"`

	// load / wait_for / wait_user
	Condition *Condition `json:"condition,omitempty"`
	Timeout   float64    `json:"timeout,omitempty"` // seconds

	// set_variable
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`

	// wait
	Duration float64 `json:"duration,omitempty"` // seconds
	Prompt   string  `json:"prompt,omitempty"`
}

// ElementSelector describes a UI element by accessibility properties.
type ElementSelector struct {
	Name         string   `json:"name,omitempty"`
	ControlType  string   `json:"control_type,omitempty"`
	ClassName    string   `json:"class_name,omitempty"`
	ProcessName  string   `json:"process_name,omitempty"`
	AncestorPath []string `json:"ancestor_path,omitempty"`
}

// Empty reports whether no selector property is set.
func (s *ElementSelector) Empty() bool {
	return s == nil || (s.Name == "" && s.ControlType == "" && s.ClassName == "" && s.ProcessName == "")
}

// CoordinateSelector is a raw screen location, optionally with the bounding
// box it was recorded from.
type CoordinateSelector struct {
	Coords Coords `json:"coords"`
	BBox   *BBox  `json:"bbox,omitempty"`
}

// Coords is an absolute screen point.
type Coords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BBox is the recorded bounding box of a coordinate target.
type BBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Condition is a pollable predicate description. Value accepts any JSON
// scalar; comparison always happens on its text form.
type Condition struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ValueString renders the condition value for comparison. Numbers and
// booleans coerce to their literal text; null is empty.
func (c Condition) ValueString() string {
	switch v := c.Value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// TimeoutDuration returns the action timeout, or def when unset.
func (a Action) TimeoutDuration(def time.Duration) time.Duration {
	if a.Timeout <= 0 {
		return def
	}
	return time.Duration(a.Timeout * float64(time.Second))
}

// DelayDuration returns the post-action sleep.
func (a Action) DelayDuration() time.Duration {
	if a.Delay <= 0 {
		return 0
	}
	return time.Duration(a.Delay * float64(time.Second))
}

// Parse decodes and validates a script from JSON bytes.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &FormatError{Index: -1, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseFile loads and validates a script from a JSON file.
func ParseFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}
