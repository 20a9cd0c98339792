package recorder

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestParseEvent(t *testing.T) {
	line := []byte(`{"type":"focus","timestamp":"2026-08-26T10:00:00Z","name":"Save","control_type":"Button","pid":42}`)
	ev, err := ParseEvent(line)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Type != EventFocus || ev.Name != "Save" || ev.PID != 42 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
}

func TestParseEventRejectsBadLines(t *testing.T) {
	for _, line := range []string{`not json`, `{"name":"no type"}`} {
		if _, err := ParseEvent([]byte(line)); err == nil {
			t.Errorf("ParseEvent(%q): want error", line)
		}
	}
}

func TestBufferEvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(Event{Type: EventInvoke, Name: fmt.Sprintf("e%d", i)})
	}
	events := b.Events()
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	if events[0].Name != "e2" || events[2].Name != "e4" {
		t.Errorf("events = %+v, want e2..e4", events)
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := NewBuffer(4)
	b.Add(Event{Type: EventFocus, Name: "first"})
	snap := b.Events()
	b.Add(Event{Type: EventFocus, Name: "second"})
	if len(snap) != 1 {
		t.Errorf("snapshot grew with the buffer: %+v", snap)
	}
}

func TestBufferConcurrentAdd(t *testing.T) {
	b := NewBuffer(100)
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				b.Add(Event{Type: EventProperty, Timestamp: time.Now()})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	if b.Len() != 100 {
		t.Errorf("len = %d, want the buffer capped at 100", b.Len())
	}
}

func TestScanSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"focus","name":"A"}`,
		`garbage`,
		``,
		`{"type":"invoke","name":"B"}`,
	}, "\n")

	var got []Event
	err := scan(strings.NewReader(input), func(ev Event) { got = append(got, ev) }, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("events = %+v", got)
	}
}
