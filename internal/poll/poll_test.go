package poll

import (
	"fmt"
	"testing"
	"time"

	"github.com/mkarlsen/uipilot/internal/model"
	"github.com/mkarlsen/uipilot/internal/platform/platformtest"
)

func TestUntil_TrueImmediately(t *testing.T) {
	start := time.Now()
	ok := Until(func() (bool, error) { return true, nil }, 50*time.Millisecond, time.Second)
	if !ok {
		t.Fatal("expected success")
	}
	if elapsed := time.Since(start); elapsed > 40*time.Millisecond {
		t.Errorf("first check should be immediate, took %v", elapsed)
	}
}

func TestUntil_BecomesTrue(t *testing.T) {
	calls := 0
	start := time.Now()
	ok := Until(func() (bool, error) {
		calls++
		return calls >= 3, nil
	}, 20*time.Millisecond, time.Second)
	if !ok {
		t.Fatal("expected success once predicate turns true")
	}
	if calls != 3 {
		t.Errorf("expected 3 evaluations, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("expected return shortly after predicate turned true, took %v", elapsed)
	}
}

func TestUntil_Timeout(t *testing.T) {
	start := time.Now()
	ok := Until(func() (bool, error) { return false, nil }, 20*time.Millisecond, 100*time.Millisecond)
	if ok {
		t.Fatal("expected timeout failure")
	}
	elapsed := time.Since(start)
	if elapsed < 80*time.Millisecond || elapsed > 300*time.Millisecond {
		t.Errorf("expected failure at about the timeout, took %v", elapsed)
	}
}

func TestUntil_ErrorsAreFalse(t *testing.T) {
	calls := 0
	ok := Until(func() (bool, error) {
		calls++
		if calls < 2 {
			return true, fmt.Errorf("transient") // true with error must not count
		}
		return true, nil
	}, 10*time.Millisecond, time.Second)
	if !ok {
		t.Fatal("expected eventual success")
	}
	if calls != 2 {
		t.Errorf("erroring check must be retried, got %d calls", calls)
	}
}

func TestNot(t *testing.T) {
	p := Not(func() (bool, error) { return false, nil })
	ok, err := p()
	if err != nil || !ok {
		t.Errorf("Not(false) = %v, %v", ok, err)
	}
	p = Not(func() (bool, error) { return true, fmt.Errorf("boom") })
	ok, err = p()
	if err == nil || ok {
		t.Error("Not must pass evaluation errors through as not-met")
	}
}

func TestURLMatches(t *testing.T) {
	fake := &platformtest.Fake{CopySource: "https://mail.example.com/inbox"}
	c := NewConditions(fake.Provider(true), nil)

	ok, err := c.URLMatches("example.com", false)()
	if err != nil || !ok {
		t.Errorf("contains match failed: %v %v", ok, err)
	}
	ok, _ = c.URLMatches("https://mail.example.com/inbox", true)()
	if !ok {
		t.Error("exact match failed")
	}
	ok, _ = c.URLMatches("example.com", true)()
	if ok {
		t.Error("exact match must not accept substrings")
	}

	// The address read is clipboard-driven: focus, select-all, copy, escape.
	want := [][]string{{"ctrl", "l"}, {"ctrl", "a"}, {"ctrl", "c"}, {"escape"}}
	if len(fake.Combos) < len(want) {
		t.Fatalf("expected at least %d key combos, got %d", len(want), len(fake.Combos))
	}
	for i, combo := range want {
		for j := range combo {
			if fake.Combos[i][j] != combo[j] {
				t.Errorf("combo %d = %v, want %v", i, fake.Combos[i], combo)
				break
			}
		}
	}
}

func TestURLMatchesIgnoresStaleClipboard(t *testing.T) {
	// Nothing answers the copy chord, so whatever sat in the clipboard
	// before the check must not count as the current URL.
	fake := &platformtest.Fake{ClipText: "https://mail.example.com/inbox"}
	c := NewConditions(fake.Provider(true), nil)

	ok, err := c.URLMatches("example.com", false)()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("stale clipboard text must not satisfy the URL predicate")
	}
}

func TestElementExists(t *testing.T) {
	fake := &platformtest.Fake{
		Desktop: []model.Element{
			{ID: 1, Name: "Shell", Children: []model.Element{
				{ID: 2, Name: "Sign in", ControlType: "Button"},
			}},
		},
	}
	c := NewConditions(fake.Provider(true), nil)

	ok, err := c.ElementExists("Sign in")()
	if err != nil || !ok {
		t.Errorf("expected element to exist: %v %v", ok, err)
	}
	ok, _ = c.ElementExists("Sign out")()
	if ok {
		t.Error("expected miss for absent element")
	}

	// not_exists is the complementary evaluation of the same search.
	p, err := c.ForCondition("uia.not_exists", "Sign out")
	if err != nil {
		t.Fatal(err)
	}
	ok, err = p()
	if err != nil || !ok {
		t.Errorf("not_exists of absent element should hold: %v %v", ok, err)
	}
}

func TestElementExists_NoTree(t *testing.T) {
	fake := &platformtest.Fake{}
	c := NewConditions(fake.Provider(false), nil)
	ok, err := c.ElementExists("anything")()
	if err == nil || ok {
		t.Error("tree-less provider must report an evaluation error, not a result")
	}
}

func TestForCondition_Unknown(t *testing.T) {
	c := NewConditions((&platformtest.Fake{}).Provider(true), nil)
	if _, err := c.ForCondition("dom.ready", "x"); err == nil {
		t.Error("expected error for unknown condition type")
	}
}
