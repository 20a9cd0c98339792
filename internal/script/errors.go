package script

import "fmt"

// FormatError reports a malformed script. It is fatal at load time: no
// action of a malformed script ever executes. Index is -1 for script-level
// problems, otherwise the offending action's position.
type FormatError struct {
	Index  int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid script: %s", e.Reason)
	}
	return fmt.Sprintf("invalid script: action %d: %s", e.Index, e.Reason)
}
