package chat

import (
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"shellm/model"
)

// MessageMatch is a search hit inside one session.
type MessageMatch struct {
	SessionID    string
	MessageIndex int
	Role         string
	Preview      string
	UpdatedAt    time.Time
}

const previewLength = 100

// SearchAllSessions scans every stored session for messages containing the
// query, case insensitive. System messages are skipped: they carry role
// boilerplate, not conversation content.
func (s *Store) SearchAllSessions(query string) ([]MessageMatch, error) {
	if query == "" {
		return nil, nil
	}

	sessions, err := s.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []MessageMatch

	for _, meta := range sessions {
		messages, err := s.Load(meta.ID)
		if err != nil {
			continue
		}

		for i, msg := range messages {
			if msg.Role == model.RoleSystem {
				continue
			}
			if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
				continue
			}

			preview := strings.ReplaceAll(msg.Content, "\n", " ")
			if len(preview) > previewLength {
				preview = preview[:previewLength] + "..."
			}

			matches = append(matches, MessageMatch{
				SessionID:    meta.ID,
				MessageIndex: i,
				Role:         msg.Role,
				Preview:      preview,
				UpdatedAt:    meta.UpdatedAt,
			})
		}
	}

	return matches, nil
}

// MatchSessionIDs fuzzy-matches stored session ids against a pattern,
// best matches first.
func (s *Store) MatchSessionIDs(pattern string) ([]string, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(sessions))
	for i, meta := range sessions {
		ids[i] = meta.ID
	}

	if pattern == "" {
		return ids, nil
	}

	results := fuzzy.Find(pattern, ids)
	matched := make([]string, len(results))
	for i, r := range results {
		matched[i] = r.Str
	}
	return matched, nil
}
