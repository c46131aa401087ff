package costumeclean

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

// DefaultRemoveWait bounds how long PrepareDestination waits for a cleared
// destination directory to actually disappear before proceeding anyway.
const DefaultRemoveWait = 10 * time.Second

// removePollInterval is the poll period of the deletion-visibility wait.
const removePollInterval = 50 * time.Millisecond

// ErrDeclined is returned by PrepareDestination when the user declines the
// overwrite confirmation. The run aborts with no changes made.
var ErrDeclined = errors.New("destination overwrite declined")

// PrepareAction records which state transition PrepareDestination performed.
type PrepareAction int

const (
	PrepareCreated PrepareAction = iota // did not exist; created
	PrepareKept                         // existed and was empty; untouched
	PrepareCleared                      // existed non-empty; confirmed, cleared, recreated
)

func (a PrepareAction) String() string {
	switch a {
	case PrepareCreated:
		return "created"
	case PrepareKept:
		return "kept"
	case PrepareCleared:
		return "cleared"
	default:
		return fmt.Sprintf("PrepareAction(%d)", int(a))
	}
}

// PrepareDestination ensures path exists as an empty directory and reports
// the transition it made:
//
//   - missing: create it (with parents) -> PrepareCreated.
//   - exists, empty: leave it alone -> PrepareKept.
//   - exists, non-empty: ask confirm (nil confirm = yes to all); on decline
//     return ErrDeclined with no changes. On confirmation delete the whole
//     tree, wait up to wait for the deletion to become visible, then
//     recreate the directory -> PrepareCleared.
//
// Clearing a pre-existing destination is the one irreversible operation in
// the pipeline; it never runs without either emptiness or confirmation.
func PrepareDestination(path string, confirm ConfirmFunc, wait time.Duration) (PrepareAction, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return 0, fmt.Errorf("create destination: %w", err)
		}
		return PrepareCreated, nil
	case err != nil:
		return 0, fmt.Errorf("stat destination: %w", err)
	case !info.IsDir():
		return 0, fmt.Errorf("destination %q is not a directory", path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, fmt.Errorf("read destination: %w", err)
	}
	if len(entries) == 0 {
		return PrepareKept, nil
	}

	if confirm != nil {
		prompt := fmt.Sprintf("The destination path (%q) already exists! "+
			"Would you like to continue? This will overwrite the directory.", path)
		if !confirm(prompt) {
			return 0, ErrDeclined
		}
	}

	if err := removeTreeWait(path, wait); err != nil {
		return 0, err
	}
	// Idempotent: the directory may or may not still be visible after the
	// bounded wait gave up.
	if err := os.MkdirAll(path, 0o755); err != nil {
		return 0, fmt.Errorf("recreate destination: %w", err)
	}
	return PrepareCleared, nil
}

// removeTreeWait deletes the directory tree at path and polls until the path
// is no longer a directory or the wait elapses. On some filesystems removal
// completes asynchronously; when the wait elapses the removal is unconfirmed
// and the caller proceeds anyway.
func removeTreeWait(path string, wait time.Duration) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove destination: %w", err)
	}
	if wait <= 0 {
		wait = DefaultRemoveWait
	}
	deadline := time.Now().Add(wait)
	for isDir(path) {
		if time.Now().After(deadline) {
			slog.Warn("directory removal not confirmed within timeout, continuing",
				"path", path, "timeout", wait)
			return nil
		}
		time.Sleep(removePollInterval)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
