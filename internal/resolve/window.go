package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/script"
)

// windowStrategy is one fallback step of the window chain.
type windowStrategy struct {
	name    string
	attempt func(sel script.ElementSelector, windows []platform.Window) (platform.Window, bool)
}

// Window resolves the selector to a top-level window, trying each strategy
// in priority order. Once a window is chosen there is no backtracking, even
// if element search inside it later fails.
func (r *Resolver) Window(sel script.ElementSelector) (platform.Window, error) {
	if r.p.Windows == nil {
		return platform.Window{}, &NotFoundError{Kind: "window", Detail: "window manager unavailable"}
	}
	windows, err := r.p.Windows.ListWindows()
	if err != nil {
		return platform.Window{}, &NotFoundError{Kind: "window", Detail: err.Error()}
	}

	strategies := []windowStrategy{
		{name: "process", attempt: r.windowByProcess},
		{name: "class", attempt: r.windowByClass},
		{name: "signature", attempt: r.windowBySignature},
		{name: "fallback", attempt: r.windowFallback},
	}
	for _, st := range strategies {
		if w, ok := st.attempt(sel, windows); ok {
			r.log.Debug("window resolved",
				zap.String("strategy", st.name),
				zap.String("title", w.Title),
				zap.Int("pid", w.PID))
			return w, nil
		}
	}
	return platform.Window{}, &NotFoundError{Kind: "window", Detail: describeSelector(sel)}
}

// windowByProcess matches the declared process name against running
// processes and picks that process's top-level window.
func (r *Resolver) windowByProcess(sel script.ElementSelector, windows []platform.Window) (platform.Window, bool) {
	if sel.ProcessName == "" {
		return platform.Window{}, false
	}
	procs, err := r.p.Windows.ListProcesses()
	if err != nil {
		r.log.Debug("process enumeration failed", zap.Error(err))
		return platform.Window{}, false
	}
	want := strings.ToLower(strings.TrimSuffix(sel.ProcessName, ".exe"))
	for _, proc := range procs {
		have := strings.ToLower(strings.TrimSuffix(proc.Name, ".exe"))
		if have != want {
			continue
		}
		for _, w := range windows {
			if w.PID == proc.PID {
				return w, true
			}
		}
	}
	return platform.Window{}, false
}

// windowByClass matches the window class/signature string.
func (r *Resolver) windowByClass(sel script.ElementSelector, windows []platform.Window) (platform.Window, bool) {
	if sel.ClassName == "" {
		return platform.Window{}, false
	}
	for _, w := range windows {
		if w.Class == sel.ClassName {
			return w, true
		}
	}
	return platform.Window{}, false
}

// windowBySignature scans titles for a recognized application signature.
func (r *Resolver) windowBySignature(_ script.ElementSelector, windows []platform.Window) (platform.Window, bool) {
	for _, w := range windows {
		if w.Title != "" && r.isBrowserWindow(w) {
			return w, true
		}
	}
	return platform.Window{}, false
}

// windowFallback takes the first visible window with non-trivial title text.
func (r *Resolver) windowFallback(_ script.ElementSelector, windows []platform.Window) (platform.Window, bool) {
	for _, w := range windows {
		if w.Visible && len(w.Title) > 3 {
			return w, true
		}
	}
	return platform.Window{}, false
}

func describeSelector(sel script.ElementSelector) string {
	var parts []string
	if sel.Name != "" {
		parts = append(parts, "name="+sel.Name)
	}
	if sel.ControlType != "" {
		parts = append(parts, "type="+sel.ControlType)
	}
	if sel.ClassName != "" {
		parts = append(parts, "class="+sel.ClassName)
	}
	if sel.ProcessName != "" {
		parts = append(parts, "process="+sel.ProcessName)
	}
	if len(parts) == 0 {
		return "empty selector"
	}
	return strings.Join(parts, " ")
}
