package chat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shellm/model"
)

func newTestStore(t *testing.T, maxMessages int) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), maxMessages)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestLoadMissingSession(t *testing.T) {
	s := newTestStore(t, 0)

	messages, err := s.Load("never-created")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if messages != nil {
		t.Errorf("missing session must load as nil, got %v", messages)
	}
}

func TestAppendPreservesOrderAndContent(t *testing.T) {
	s := newTestStore(t, 0)

	multiline := "first line\n\tindented\nlast line"
	if err := s.Append("demo",
		model.SystemMessage("You are shellm\nassistant"),
		model.UserMessage("hello"),
	); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("demo", model.AssistantMessage(multiline)); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	messages, err := s.Load("demo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	wantRoles := []string{model.RoleSystem, model.RoleUser, model.RoleAssistant}
	for i, want := range wantRoles {
		if messages[i].Role != want {
			t.Errorf("message %d role = %q, want %q", i, messages[i].Role, want)
		}
	}
	if messages[2].Content != multiline {
		t.Errorf("multiline content mangled: %q", messages[2].Content)
	}
}

func TestCorruptSession(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = s.Load("broken")
	var corrupt *model.SessionCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected SessionCorruptError, got %v", err)
	}
	if corrupt.ID != "broken" {
		t.Errorf("error names session %q, want broken", corrupt.ID)
	}
}

func TestCappingKeepsSystemMessage(t *testing.T) {
	s := newTestStore(t, 4)

	if err := s.Append("capped", model.SystemMessage("You are shellm\nassistant")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := s.Append("capped",
			model.UserMessage("question"),
			model.AssistantMessage("answer"),
		); err != nil {
			t.Fatalf("Append turn %d: %v", i, err)
		}
	}

	messages, err := s.Load("capped")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages after capping, got %d", len(messages))
	}
	if messages[0].Role != model.RoleSystem {
		t.Errorf("capping dropped the system message, first role = %q", messages[0].Role)
	}
	if messages[len(messages)-1].Role != model.RoleAssistant {
		t.Errorf("newest message lost, last role = %q", messages[len(messages)-1].Role)
	}
}

func TestOverwriteReplacesHistory(t *testing.T) {
	s := newTestStore(t, 0)

	if err := s.Append("temp", model.UserMessage("old"), model.AssistantMessage("old answer")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Overwrite("temp", []model.Message{model.UserMessage("new")}); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	messages, err := s.Load("temp")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "new" {
		t.Errorf("overwrite did not replace history: %v", messages)
	}
}

func TestDeleteAndExists(t *testing.T) {
	s := newTestStore(t, 0)

	if s.Exists("gone") {
		t.Error("Exists must be false before creation")
	}
	if err := s.Append("gone", model.UserMessage("hi")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !s.Exists("gone") {
		t.Error("Exists must be true after append")
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("gone") {
		t.Error("Exists must be false after delete")
	}
}

func TestSearchAllSessions(t *testing.T) {
	s := newTestStore(t, 0)

	if err := s.Append("alpha",
		model.SystemMessage("You are shellm\ncontains needle but is system"),
		model.UserMessage("where is the needle?"),
	); err != nil {
		t.Fatalf("Append alpha: %v", err)
	}
	if err := s.Append("beta", model.UserMessage("nothing here")); err != nil {
		t.Fatalf("Append beta: %v", err)
	}

	matches, err := s.SearchAllSessions("NEEDLE")
	if err != nil {
		t.Fatalf("SearchAllSessions: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].SessionID != "alpha" || matches[0].Role != model.RoleUser {
		t.Errorf("unexpected match: %+v", matches[0])
	}
}

func TestMatchSessionIDs(t *testing.T) {
	s := newTestStore(t, 0)

	for _, id := range []string{"deploy-notes", "grocery-list", "debug-payment"} {
		if err := s.Append(id, model.UserMessage("x")); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}

	ids, err := s.MatchSessionIDs("dep")
	if err != nil {
		t.Fatalf("MatchSessionIDs: %v", err)
	}
	if len(ids) == 0 {
		t.Fatal("expected at least one fuzzy match")
	}
	for _, id := range ids {
		if id == "grocery-list" {
			t.Errorf("grocery-list should not match %q", "dep")
		}
	}
}

func TestLockLifecycle(t *testing.T) {
	s := newTestStore(t, 0)

	if err := s.Lock("busy"); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	// Our own PID never counts as a competing holder.
	locked, _, err := s.CheckLock("busy")
	if err != nil {
		t.Fatalf("CheckLock: %v", err)
	}
	if locked {
		t.Error("own lock must not report as locked")
	}

	if err := s.Unlock("busy"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := s.Unlock("busy"); err != nil {
		t.Errorf("double Unlock must be a no-op, got %v", err)
	}
}

func TestSlashedSessionID(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 0)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	// An id with a path separator must still append and round-trip; the
	// artifact lands inside the store directory under the sanitized name.
	if err := s.Append("my/topic", model.UserMessage("hello")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("my/topic", model.AssistantMessage("hi")); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	messages, err := s.Load("my/topic")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}

	if _, err := os.Stat(filepath.Join(dir, "my-topic.json")); err != nil {
		t.Errorf("expected sanitized artifact inside the store directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "my")); !os.IsNotExist(err) {
		t.Error("raw id must not create a subdirectory")
	}
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a/b\\c:d", "a-b-c-d"},
		{"  ", "session"},
		{"..hidden..", "hidden"},
	}
	for _, tt := range tests {
		if got := SanitizeID(tt.in); got != tt.want {
			t.Errorf("SanitizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
