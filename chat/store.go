// Package chat persists conversation sessions as one JSON file per session
// id. A session is an ordered array of messages; writes are atomic so a
// reader never observes a half-appended turn.
package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shellm/model"
)

// SessionMetadata is a lightweight view of a session for listing.
type SessionMetadata struct {
	ID           string    `json:"id"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store handles session persistence under a single directory.
type Store struct {
	dir         string
	maxMessages int
}

// NewStore creates a session store rooted at dir. maxMessages bounds the
// persisted history per session; zero disables capping.
func NewStore(dir string, maxMessages int) (*Store, error) {
	// 0700 - session files contain sensitive conversation history
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &Store{dir: dir, maxMessages: maxMessages}, nil
}

// Load returns the full message history of a session. A missing session is
// not an error: it returns (nil, nil) so the caller can start it fresh. A
// file that exists but cannot be parsed yields *model.SessionCorruptError.
func (s *Store) Load(id string) ([]model.Message, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, &model.SessionCorruptError{ID: id, Err: err}
	}

	return messages, nil
}

// Exists reports whether a session file is present on disk.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Append extends a session with new messages in one atomic write. The turn
// is either fully visible or absent; concurrent appenders follow last-writer-
// wins on the whole file.
func (s *Store) Append(id string, messages ...model.Message) error {
	existing, err := s.Load(id)
	if err != nil {
		return err
	}
	return s.write(id, s.cap(append(existing, messages...)))
}

// Overwrite replaces a session's history entirely.
func (s *Store) Overwrite(id string, messages []model.Message) error {
	return s.write(id, s.cap(messages))
}

// cap trims history beyond maxMessages, always preserving the leading system
// message that binds the session to its role.
func (s *Store) cap(messages []model.Message) []model.Message {
	if s.maxMessages <= 0 || len(messages) <= s.maxMessages {
		return messages
	}

	if messages[0].Role == model.RoleSystem {
		kept := make([]model.Message, 0, s.maxMessages)
		kept = append(kept, messages[0])
		kept = append(kept, messages[len(messages)-(s.maxMessages-1):]...)
		return kept
	}
	return messages[len(messages)-s.maxMessages:]
}

func (s *Store) write(id string, messages []model.Message) error {
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the session.
	// The temp pattern must use the sanitized id: a raw id with a path
	// separator is rejected by CreateTemp.
	tmp, err := os.CreateTemp(s.dir, SanitizeID(id)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set session file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// List returns metadata for all sessions, newest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []SessionMetadata
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		id := strings.TrimSuffix(name, ".json")
		messages, err := s.Load(id)
		if err != nil {
			continue // skip corrupted files
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		sessions = append(sessions, SessionMetadata{
			ID:           id,
			MessageCount: len(messages),
			UpdatedAt:    info.ModTime(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	return sessions, nil
}

// Delete removes a session from disk.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// ExportToJSON copies a session's history to an external path, indented for
// readability.
func (s *Store) ExportToJSON(id string, exportPath string) error {
	messages, err := s.Load(id)
	if err != nil {
		return err
	}
	if messages == nil {
		return fmt.Errorf("session %q does not exist", id)
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600 - session exports contain sensitive data
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, SanitizeID(id)+".json")
}

// SanitizeID replaces characters that are invalid in filenames so arbitrary
// user-chosen session ids map to safe paths.
func SanitizeID(id string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	id = strings.Trim(replacer.Replace(id), "-.")

	if len(id) > 50 {
		id = id[:50]
	}
	if id == "" {
		id = "session"
	}
	return id
}
