// Package engine runs automation scripts action by action: it resolves
// targets, synthesizes input, polls conditions, and reports a structured
// per-step result.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkarlsen/uipilot/internal/input"
	"github.com/mkarlsen/uipilot/internal/platform"
	"github.com/mkarlsen/uipilot/internal/poll"
	"github.com/mkarlsen/uipilot/internal/resolve"
	"github.com/mkarlsen/uipilot/internal/script"
	"github.com/mkarlsen/uipilot/internal/vars"
)

// Step failure kinds, matchable with errors.Is through wrapped step errors.
var (
	ErrTimeout = errors.New("timeout expired")
	ErrLaunch  = errors.New("process launch failed")
)

// State is the interpreter lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// StepResult records one executed action.
type StepResult struct {
	Index   int               `json:"index"`
	Type    script.ActionType `json:"type"`
	Success bool              `json:"success"`
	Reason  string            `json:"reason,omitempty"`
	Elapsed float64           `json:"elapsed_seconds"`
}

// Result is the outcome of a full script run.
type Result struct {
	Success      bool         `json:"success"`
	FailedIndex  int          `json:"failed_index"` // -1 when the run succeeded
	FailedReason string       `json:"failed_reason,omitempty"`
	Snapshot     string       `json:"snapshot,omitempty"`
	Steps        []StepResult `json:"steps"`
}

// Options tune interpreter timing and failure capture.
type Options struct {
	// DefaultTimeout applies to load/wait_for actions that declare none.
	DefaultTimeout time.Duration
	// UserTimeout applies to wait_user actions that declare none. User
	// interaction is slow, so it is much longer than DefaultTimeout.
	UserTimeout time.Duration
	// PollInterval is the condition check cadence.
	PollInterval time.Duration
	// TypeDelay is the per-character typing delay for actions that
	// declare none.
	TypeDelay time.Duration
	// SnapshotDir, when set, receives an annotated screenshot of the
	// moment a run fails.
	SnapshotDir string
	// Stdin feeds wait-prompt acknowledgements. Defaults to os.Stdin.
	Stdin io.Reader
}

// DefaultOptions returns the stock interpreter timing.
func DefaultOptions() Options {
	return Options{
		DefaultTimeout: 30 * time.Second,
		UserTimeout:    5 * time.Minute,
		PollInterval:   poll.DefaultInterval,
		TypeDelay:      input.DefaultTypeDelay,
	}
}

// Interpreter executes scripts sequentially. One interpreter runs one
// script at a time; Run may be called again after it returns.
type Interpreter struct {
	p        *platform.Provider
	resolver *resolve.Resolver
	input    *input.Synthesizer
	conds    *poll.Conditions
	store    *vars.Store
	opts     Options
	log      *zap.Logger

	mu    sync.Mutex
	state State

	// lastTarget is the most recent pointer destination, kept for failure
	// snapshots. Only the Run goroutine touches it.
	lastTarget *platform.Point
}

// New builds an interpreter over a platform provider. A nil store starts
// empty.
func New(p *platform.Provider, rcfg resolve.Config, opts Options, store *vars.Store, log *zap.Logger) *Interpreter {
	if log == nil {
		log = zap.NewNop()
	}
	if store == nil {
		store = vars.New()
	}
	def := DefaultOptions()
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = def.DefaultTimeout
	}
	if opts.UserTimeout <= 0 {
		opts.UserTimeout = def.UserTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.TypeDelay <= 0 {
		opts.TypeDelay = def.TypeDelay
	}
	synth := input.New(p, log)
	synth.TypeDelay = opts.TypeDelay
	return &Interpreter{
		p:        p,
		resolver: resolve.New(p, rcfg, log),
		input:    synth,
		conds:    poll.NewConditions(p, log),
		store:    store,
		opts:     opts,
		log:      log,
	}
}

// State returns the interpreter's current lifecycle phase.
func (in *Interpreter) State() State {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.state
}

// Vars exposes the interpreter's variable store.
func (in *Interpreter) Vars() *vars.Store {
	return in.store
}

func (in *Interpreter) setState(s State) {
	in.mu.Lock()
	in.state = s
	in.mu.Unlock()
}

// Run executes every action in order. A failing action stops the run and
// marks it failed unless the action set continue_on_failure; ctx
// cancellation stops between actions.
func (in *Interpreter) Run(ctx context.Context, s *script.Script) Result {
	in.setState(StateRunning)
	res := Result{FailedIndex: -1, Steps: make([]StepResult, 0, len(s.Actions))}

	for i, a := range s.Actions {
		if err := ctx.Err(); err != nil {
			in.setState(StateFailed)
			res.FailedIndex = i
			res.FailedReason = err.Error()
			return res
		}

		start := time.Now()
		stepErr := in.execute(a)
		step := StepResult{
			Index:   i,
			Type:    a.Type,
			Success: stepErr == nil,
			Elapsed: time.Since(start).Seconds(),
		}
		if stepErr != nil {
			step.Reason = stepErr.Error()
		}
		res.Steps = append(res.Steps, step)

		if stepErr != nil {
			in.log.Warn("action failed",
				zap.Int("index", i),
				zap.String("type", string(a.Type)),
				zap.Error(stepErr))
			if a.ContinueOnFailure {
				continue
			}
			in.setState(StateFailed)
			res.FailedIndex = i
			res.FailedReason = stepErr.Error()
			res.Snapshot = in.captureFailure(i)
			return res
		}

		in.log.Debug("action done",
			zap.Int("index", i),
			zap.String("type", string(a.Type)),
			zap.Duration("elapsed", time.Since(start)))

		// Typing actions spend their delay between characters, not after
		// the action.
		if a.Type != script.ActionTypeText {
			if d := a.DelayDuration(); d > 0 {
				time.Sleep(d)
			}
		}
	}

	in.setState(StateSucceeded)
	res.Success = true
	return res
}

func (in *Interpreter) execute(a script.Action) error {
	switch a.Type {
	case script.ActionStartProcess:
		return in.startProcess(a)
	case script.ActionClick:
		return in.click(a)
	case script.ActionTypeText:
		return in.input.TypeText(a.Text, a.DelayDuration(), a.FocusApp, in.store)
	case script.ActionLoad, script.ActionWaitFor:
		return in.waitCondition(a, a.TimeoutDuration(in.opts.DefaultTimeout))
	case script.ActionWaitUser:
		return in.waitCondition(a, a.TimeoutDuration(in.opts.UserTimeout))
	case script.ActionSetVariable:
		in.store.Set(a.Name, a.Value)
		return nil
	case script.ActionWait:
		return in.waitAction(a)
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
}

func (in *Interpreter) startProcess(a script.Action) error {
	if in.p.Launcher == nil {
		return platform.ErrUnsupported
	}
	var err error
	if strings.HasPrefix(a.Target, "http://") || strings.HasPrefix(a.Target, "https://") {
		err = in.p.Launcher.OpenURL(a.Target, a.AppPath)
	} else {
		err = in.p.Launcher.StartProcess(a.Target, a.AppPath)
	}
	if err != nil {
		return fmt.Errorf("start %q: %w: %w", a.Target, ErrLaunch, err)
	}
	return nil
}

// click dispatches the three click modes: keyboard shortcut, element
// selector with coordinate fallback, and raw coordinates.
func (in *Interpreter) click(a script.Action) error {
	if a.FocusApp != "" {
		if err := in.input.Focus(a.FocusApp); err != nil {
			return err
		}
	}
	if a.KeyboardShortcut != "" {
		return in.input.Shortcut(a.KeyboardShortcut)
	}

	button, err := platform.ParseMouseButton(a.Button)
	if err != nil {
		return err
	}

	if !a.ElementSelector.Empty() {
		target, rerr := in.resolver.Resolve(*a.ElementSelector)
		if rerr == nil {
			switch {
			case target.Clicked:
				return nil
			case target.Element != nil:
				cx, cy := target.Element.Center()
				in.lastTarget = &platform.Point{X: cx, Y: cy}
				return in.input.ClickElement(target.Window, target.Element, button)
			case target.Point != nil:
				in.lastTarget = target.Point
				return in.input.ClickPoint(target.Point.X, target.Point.Y, button)
			}
		}
		var nf *resolve.NotFoundError
		if errors.As(rerr, &nf) && a.CoordinateSelector != nil {
			in.log.Info("selector unresolved, using recorded coordinates",
				zap.String("detail", nf.Detail),
				zap.Int("x", a.CoordinateSelector.Coords.X),
				zap.Int("y", a.CoordinateSelector.Coords.Y))
			in.lastTarget = &platform.Point{X: a.CoordinateSelector.Coords.X, Y: a.CoordinateSelector.Coords.Y}
			return in.input.ClickPoint(a.CoordinateSelector.Coords.X, a.CoordinateSelector.Coords.Y, button)
		}
		return rerr
	}

	if a.CoordinateSelector != nil {
		in.lastTarget = &platform.Point{X: a.CoordinateSelector.Coords.X, Y: a.CoordinateSelector.Coords.Y}
		return in.input.ClickPoint(a.CoordinateSelector.Coords.X, a.CoordinateSelector.Coords.Y, button)
	}
	return fmt.Errorf("click has no target")
}

func (in *Interpreter) waitCondition(a script.Action, timeout time.Duration) error {
	pred, err := in.conds.ForCondition(a.Condition.Type, a.Condition.ValueString())
	if err != nil {
		return err
	}
	if !poll.Until(pred, in.opts.PollInterval, timeout) {
		return fmt.Errorf("condition %s=%q not met within %s: %w",
			a.Condition.Type, a.Condition.ValueString(), timeout, ErrTimeout)
	}
	return nil
}

// waitAction sleeps for a fixed duration, or blocks on a line of input
// when the action carries a prompt instead.
func (in *Interpreter) waitAction(a script.Action) error {
	if a.Duration > 0 {
		time.Sleep(time.Duration(a.Duration * float64(time.Second)))
		return nil
	}
	if a.Prompt != "" {
		fmt.Fprintln(os.Stderr, a.Prompt)
		reader := bufio.NewReader(in.opts.Stdin)
		if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
			return fmt.Errorf("wait prompt: %w", err)
		}
	}
	return nil
}
