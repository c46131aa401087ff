package costumeclean

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testRemoveWait = time.Second

func TestPrepareDestination_CreatesMissing(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out", "cleaned")
	action, err := PrepareDestination(dest, nil, testRemoveWait)
	if err != nil {
		t.Fatalf("PrepareDestination() error = %v", err)
	}
	if action != PrepareCreated {
		t.Errorf("action = %v, want %v", action, PrepareCreated)
	}
	if !isDir(dest) {
		t.Error("destination was not created")
	}
}

func TestPrepareDestination_KeepsEmpty(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	action, err := PrepareDestination(dest, nil, testRemoveWait)
	if err != nil {
		t.Fatalf("PrepareDestination() error = %v", err)
	}
	if action != PrepareKept {
		t.Errorf("action = %v, want %v", action, PrepareKept)
	}
}

func TestPrepareDestination_ClearsNonEmptyWithoutConfirm(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "stale.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// nil confirm means yes-to-all.
	action, err := PrepareDestination(dest, nil, testRemoveWait)
	if err != nil {
		t.Fatalf("PrepareDestination() error = %v", err)
	}
	if action != PrepareCleared {
		t.Errorf("action = %v, want %v", action, PrepareCleared)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("destination not empty after clear: %d entries", len(entries))
	}
}

func TestPrepareDestination_DeclinedMakesNoChanges(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	stale := filepath.Join(dest, "stale.png")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	decline := func(string) bool { return false }
	_, err := PrepareDestination(dest, decline, testRemoveWait)
	if !errors.Is(err, ErrDeclined) {
		t.Fatalf("PrepareDestination() error = %v, want ErrDeclined", err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("declining the prompt must leave existing contents untouched")
	}
}

func TestPrepareDestination_ConfirmPromptNamesPath(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "old.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var prompts []string
	confirm := func(prompt string) bool {
		prompts = append(prompts, prompt)
		return true
	}
	action, err := PrepareDestination(dest, confirm, testRemoveWait)
	if err != nil {
		t.Fatalf("PrepareDestination() error = %v", err)
	}
	if action != PrepareCleared {
		t.Errorf("action = %v, want %v", action, PrepareCleared)
	}
	if len(prompts) != 1 {
		t.Fatalf("confirm called %d times, want 1", len(prompts))
	}
	if !strings.Contains(prompts[0], dest) {
		t.Errorf("prompt %q does not name the destination path", prompts[0])
	}
}

func TestPrepareDestination_RejectsRegularFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(dest, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := PrepareDestination(dest, nil, testRemoveWait); err == nil {
		t.Error("expected error for a destination that is a regular file")
	}
}

func TestPrepareAction_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action PrepareAction
		want   string
	}{
		{PrepareCreated, "created"},
		{PrepareKept, "kept"},
		{PrepareCleared, "cleared"},
	}
	for _, tc := range tests {
		if got := tc.action.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
