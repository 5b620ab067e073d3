package roles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shellm/model"
)

// Store persists user roles as one JSON file per name and resolves builtin
// defaults per mode.
type Store struct {
	dir      string
	builtins map[string]Role
}

// NewStore creates a role store rooted at dir. osName and shell are
// interpolated into the builtin role texts.
func NewStore(dir, osName, shell string) (*Store, error) {
	// 0700 - role files shape every prompt sent on the user's behalf
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create roles directory: %w", err)
	}

	return &Store{
		dir:      dir,
		builtins: builtinRoles(osName, shell),
	}, nil
}

// Resolve returns the role for a turn: the named role when name is set, the
// builtin default for the mode otherwise. Fails with model.ErrRoleNotFound
// when an explicit name has no stored or builtin match.
func (s *Store) Resolve(name string, mode model.Mode) (*Role, error) {
	if name == "" {
		return s.DefaultForMode(mode), nil
	}
	return s.Get(name)
}

// DefaultForMode returns the builtin role serving the given mode.
func (s *Store) DefaultForMode(mode model.Mode) *Role {
	role := s.builtins[builtinNameForMode(mode)]
	return &role
}

// Get returns a role by name, builtin or stored.
func (s *Store) Get(name string) (*Role, error) {
	if role, ok := s.builtins[name]; ok {
		return &role, nil
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", model.ErrRoleNotFound, name)
		}
		return nil, fmt.Errorf("failed to read role file: %w", err)
	}

	var role Role
	if err := json.Unmarshal(data, &role); err != nil {
		return nil, fmt.Errorf("failed to unmarshal role %q: %w", name, err)
	}

	return &role, nil
}

// Create persists a new role. The stored role text is prefixed with
// "You are <name>" so the initiating role of a session can be recovered from
// its first system message. Roles are immutable once persisted.
func (s *Store) Create(name, text string, expect model.Expect) (*Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name cannot be empty")
	}
	if _, ok := s.builtins[name]; ok {
		return nil, fmt.Errorf("role %q is builtin and cannot be redefined", name)
	}
	if _, err := os.Stat(s.path(name)); err == nil {
		return nil, fmt.Errorf("role %q already exists", name)
	}

	role := Role{
		Name:     name,
		RoleText: fmt.Sprintf("You are %s\n%s", name, strings.TrimSpace(text)),
		Expect:   expect,
	}

	data, err := json.MarshalIndent(role, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal role: %w", err)
	}

	// 0600 - role text may embed user-specific instructions
	if err := os.WriteFile(s.path(name), data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write role file: %w", err)
	}

	return &role, nil
}

// List returns all builtin and stored roles sorted by name.
func (s *Store) List() ([]Role, error) {
	var result []Role
	for _, role := range s.builtins {
		result = append(result, role)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roles directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		role, err := s.Get(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // skip corrupted files
		}
		result = append(result, *role)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

// Delete removes a stored role by name. Builtins cannot be deleted.
func (s *Store) Delete(name string) error {
	if _, ok := s.builtins[name]; ok {
		return fmt.Errorf("role %q is builtin and cannot be deleted", name)
	}

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", model.ErrRoleNotFound, name)
		}
		return fmt.Errorf("failed to delete role file: %w", err)
	}

	return nil
}

// DetectExpect recovers the output variant of the role that initiated a
// session, given the session's first system message. Returns false when the
// text does not name a known role.
func (s *Store) DetectExpect(systemText string) (model.Expect, bool) {
	name := roleName(systemText)
	if name == "" {
		return "", false
	}

	role, err := s.Get(name)
	if err != nil {
		return "", false
	}
	return role.Expect, true
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, fileName(name)+".json")
}

// fileName maps a role name to a safe artifact name. Path separators and
// other characters invalid in filenames are replaced so no name can address
// a file outside the store directory.
func fileName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-",
		"\n", "-", "\r", "-",
	)
	name = strings.Trim(replacer.Replace(name), "-.")
	if name == "" {
		name = "role"
	}
	return name
}
