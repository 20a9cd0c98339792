package script

import "fmt"

var validButtons = map[string]bool{"": true, "left": true, "right": true, "middle": true}

var validConditions = map[string]bool{
	CondURLContains:    true,
	CondURLIs:          true,
	CondElementExists:  true,
	CondElementMissing: true,
}

// Validate checks the script shape once, before any action runs. A script
// that fails validation must never be partially executed.
func (s *Script) Validate() error {
	if len(s.Actions) == 0 {
		return &FormatError{Index: -1, Reason: "script has no actions"}
	}
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return &FormatError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

func (a Action) validate() error {
	switch a.Type {
	case ActionStartProcess:
		if a.Target == "" {
			return fmt.Errorf("start_process requires target")
		}
	case ActionClick:
		if !validButtons[a.Button] {
			return fmt.Errorf("unknown mouse button %q", a.Button)
		}
		if a.ElementSelector.Empty() && a.CoordinateSelector == nil && a.KeyboardShortcut == "" {
			return fmt.Errorf("click requires element_selector, coordinate_selector, or keyboard_shortcut")
		}
	case ActionTypeText:
		if a.Text == "" {
			return fmt.Errorf("type_text requires text")
		}
	case ActionLoad, ActionWaitFor, ActionWaitUser:
		if a.Condition == nil {
			return fmt.Errorf("%s requires condition", a.Type)
		}
		if !validConditions[a.Condition.Type] {
			return fmt.Errorf("unknown condition type %q", a.Condition.Type)
		}
		if a.Condition.ValueString() == "" {
			return fmt.Errorf("condition requires value")
		}
	case ActionSetVariable:
		if a.Name == "" {
			return fmt.Errorf("set_variable requires name")
		}
	case ActionWait:
		if a.Duration < 0 {
			return fmt.Errorf("wait duration must not be negative")
		}
	case "":
		return fmt.Errorf("action missing type")
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}
