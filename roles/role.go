// Package roles manages behavioral templates: named system prompts paired
// with the output variant they expect. Builtin roles cover the shell,
// describe-shell, code and plain-chat modes; user roles are persisted as one
// JSON artifact per name.
package roles

import (
	"strings"

	"shellm/model"
)

// Role is an immutable behavioral template. RoleText becomes the system
// message of every session the role initiates; Expect governs which modes may
// drive such a session and how answers are post-processed.
type Role struct {
	Name     string       `json:"name"`
	RoleText string       `json:"role_text"`
	Expect   model.Expect `json:"expect"`
}

// SystemMessage renders the role as the opening system message of a session.
func (r *Role) SystemMessage() model.Message {
	return model.SystemMessage(r.RoleText)
}

// roleName extracts the role name from a system-prompt body. Role texts
// always open with "You are <name>\n", both for builtins and created roles,
// which lets a session's initiating role be recovered from its first message.
func roleName(roleText string) string {
	first, _, _ := strings.Cut(roleText, "\n")
	name, ok := strings.CutPrefix(first, "You are ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(name)
}
