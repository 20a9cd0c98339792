package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSession() Session {
	return Session{
		Name:        "checkout",
		Description: "fills the checkout form",
		Version:     1,
		Steps: []Step{
			{Number: 1, Action: json.RawMessage(`{"type":"start_process","target":"chrome.exe"}`)},
			{Number: 2, Action: json.RawMessage(`{"type":"type_text","text":"${card}"}`)},
		},
		Variables: []Variable{
			{Name: "card", Label: "Card number", Required: true, RequiresApproval: true},
		},
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSession(sampleSession()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession("checkout", 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Description != "fills the checkout form" {
		t.Errorf("description = %q", got.Description)
	}
	if len(got.Steps) != 2 || got.Steps[0].Number != 1 || got.Steps[1].Number != 2 {
		t.Fatalf("steps = %+v", got.Steps)
	}
	var action map[string]any
	if err := json.Unmarshal(got.Steps[0].Action, &action); err != nil {
		t.Fatalf("stored action is not JSON: %v", err)
	}
	if action["type"] != "start_process" {
		t.Errorf("step 1 action = %v", action)
	}
	if len(got.Variables) != 1 || !got.Variables[0].RequiresApproval {
		t.Errorf("variables = %+v", got.Variables)
	}
}

func TestCreateSessionRejectsEmptyName(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSession(Session{Version: 1}); err == nil {
		t.Fatal("want error for empty session name")
	}
}

func TestCreateSessionDuplicateVersion(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSession(sampleSession()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(sampleSession()); err == nil {
		t.Fatal("want primary key violation for duplicate name+version")
	}
	// A new version of the same session is fine.
	v2 := sampleSession()
	v2.Version = 2
	if err := s.CreateSession(v2); err != nil {
		t.Fatalf("CreateSession v2: %v", err)
	}
}

func TestListSessions(t *testing.T) {
	s := setupTestStore(t)
	for _, v := range []int{1, 2} {
		sess := sampleSession()
		sess.Version = v
		if err := s.CreateSession(sess); err != nil {
			t.Fatalf("CreateSession v%d: %v", v, err)
		}
	}
	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("want 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Version != 2 {
		t.Errorf("want newest version first, got %+v", sessions)
	}
}

func TestDeleteSessionRemovesEverything(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSession(sampleSession()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	id, err := s.StartRun("checkout", 1, "")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := s.FinishRun(id, "succeeded"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	if err := s.DeleteSession("checkout", 1); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession("checkout", 1); err == nil {
		t.Error("session still present after delete")
	}
	runs, err := s.ListRuns("checkout", 1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("runs survived delete: %+v", runs)
	}
}

func TestRunLifecycle(t *testing.T) {
	s := setupTestStore(t)
	if err := s.CreateSession(sampleSession()); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	id, err := s.StartRun("checkout", 1, "/var/log/uipilot/run.log")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if id == "" {
		t.Fatal("want a generated run ID")
	}

	runs, err := s.ListRuns("checkout", 1)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "running" {
		t.Fatalf("runs = %+v, want one running", runs)
	}
	if runs[0].LogPath != "/var/log/uipilot/run.log" {
		t.Errorf("log path = %q", runs[0].LogPath)
	}

	if err := s.FinishRun(id, "failed"); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	runs, _ = s.ListRuns("checkout", 1)
	if runs[0].Status != "failed" || runs[0].EndedAt.IsZero() {
		t.Errorf("finished run = %+v", runs[0])
	}

	if err := s.FinishRun("no-such-run", "failed"); err == nil {
		t.Error("want error finishing unknown run")
	}
}
