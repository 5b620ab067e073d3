package chat

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock creates an advisory PID lock for a session. The lock is a hint, not a
// guarantee: concurrent writers that ignore it still get last-writer-wins on
// the session file.
func (s *Store) Lock(id string) error {
	lockPath := filepath.Join(s.dir, SanitizeID(id)+".lock")
	return os.WriteFile(lockPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0600)
}

// Unlock removes a session's lock file. A missing lock is not an error.
func (s *Store) Unlock(id string) error {
	err := os.Remove(filepath.Join(s.dir, SanitizeID(id)+".lock"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// CheckLock reports whether a session is locked by another live process.
// Stale and malformed lock files are cleaned up on sight.
func (s *Store) CheckLock(id string) (bool, int, error) {
	lockPath := filepath.Join(s.dir, SanitizeID(id)+".lock")

	data, err := os.ReadFile(lockPath)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read lock file: %w", err)
	}

	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		_ = os.Remove(lockPath)
		return false, 0, nil
	}

	if pid == os.Getpid() {
		return false, pid, nil
	}

	// FindProcess always succeeds on Unix; treat an existing entry as live.
	if _, err := os.FindProcess(pid); err != nil {
		_ = os.Remove(lockPath)
		return false, 0, nil
	}

	return true, pid, nil
}
