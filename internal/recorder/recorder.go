// Package recorder consumes the event stream of an external UI recorder
// process: one JSON event per stdout line.
package recorder

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EventType tags one observed UI event.
type EventType string

const (
	EventFocus     EventType = "focus"
	EventInvoke    EventType = "invoke"
	EventStructure EventType = "structure_changed"
	EventProperty  EventType = "property_changed"
)

// Event is one timestamped observation from the recorder.
type Event struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Name        string    `json:"name,omitempty"`
	ControlType string    `json:"control_type,omitempty"`
	ClassName   string    `json:"class_name,omitempty"`
	PID         int       `json:"pid,omitempty"`
	Property    string    `json:"property,omitempty"`
	Value       string    `json:"value,omitempty"`
}

// ParseEvent decodes one recorder stdout line.
func ParseEvent(line []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("malformed recorder event: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("recorder event missing type")
	}
	return ev, nil
}

// Buffer keeps the most recent events, discarding the oldest once full.
type Buffer struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewBuffer returns a buffer holding at most max events.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 1024
	}
	return &Buffer{max: max}
}

// Add appends an event, evicting the oldest when the buffer is full.
func (b *Buffer) Add(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == b.max {
		copy(b.events, b.events[1:])
		b.events = b.events[:len(b.events)-1]
	}
	b.events = append(b.events, ev)
}

// Events returns a snapshot of the buffered events, oldest first.
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Stream launches the recorder executable and feeds its events to handle
// until the process exits or ctx is cancelled. Malformed lines are logged
// and skipped.
func Stream(ctx context.Context, binPath string, args []string, handle func(Event), log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	cmd := exec.CommandContext(ctx, binPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("recorder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start recorder %q: %w", binPath, err)
	}
	log.Info("recorder started", zap.String("bin", binPath), zap.Int("pid", cmd.Process.Pid))

	if err := scan(stdout, handle, log); err != nil {
		_ = cmd.Wait()
		return err
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("recorder exited: %w", err)
	}
	return nil
}

func scan(r io.Reader, handle func(Event), log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		ev, err := ParseEvent(line)
		if err != nil {
			log.Warn("dropping recorder line", zap.Error(err))
			continue
		}
		handle(ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read recorder stream: %w", err)
	}
	return nil
}
