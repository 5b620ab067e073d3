// Package engine orchestrates a single completion turn: role resolution,
// session binding, cache consultation, the provider call with bounded
// function-call rounds, output post-processing and atomic history persistence.
package engine

import (
	"context"
	"fmt"

	"shellm/cache"
	"shellm/chat"
	"shellm/config"
	"shellm/functions"
	"shellm/model"
	"shellm/roles"
)

// Engine wires the stores, the completion cache and the provider into one
// turn executor.
type Engine struct {
	cfg        *config.Config
	provider   model.Provider
	roles      *roles.Store
	sessions   *chat.Store
	cache      *cache.Cache
	dispatcher *functions.Dispatcher
}

// New assembles an engine from its collaborators.
func New(cfg *config.Config, provider model.Provider, roleStore *roles.Store, sessionStore *chat.Store, completionCache *cache.Cache, dispatcher *functions.Dispatcher) *Engine {
	return &Engine{
		cfg:        cfg,
		provider:   provider,
		roles:      roleStore,
		sessions:   sessionStore,
		cache:      completionCache,
		dispatcher: dispatcher,
	}
}

// ListSessions returns stored session metadata, newest first.
func (e *Engine) ListSessions() ([]chat.SessionMetadata, error) {
	return e.sessions.List()
}

// ShowSession returns the full message history of a session.
func (e *Engine) ShowSession(id string) ([]model.Message, error) {
	messages, err := e.sessions.Load(id)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		return nil, fmt.Errorf("session %q does not exist", id)
	}
	return messages, nil
}

// DeleteSession removes a session from disk.
func (e *Engine) DeleteSession(id string) error {
	return e.sessions.Delete(id)
}

// ExportSession writes a session's history to an external JSON file.
func (e *Engine) ExportSession(id, path string) error {
	return e.sessions.ExportToJSON(id, path)
}

// SearchSessions scans all stored sessions for messages containing the query.
func (e *Engine) SearchSessions(query string) ([]chat.MessageMatch, error) {
	return e.sessions.SearchAllSessions(query)
}

// MatchSessionIDs fuzzy-matches stored session ids against a pattern.
func (e *Engine) MatchSessionIDs(pattern string) ([]string, error) {
	return e.sessions.MatchSessionIDs(pattern)
}

// ListRoles returns all builtin and stored roles.
func (e *Engine) ListRoles() ([]roles.Role, error) {
	return e.roles.List()
}

// ShowRole returns a role by name.
func (e *Engine) ShowRole(name string) (*roles.Role, error) {
	return e.roles.Get(name)
}

// CreateRole persists a new user role.
func (e *Engine) CreateRole(name, text string, expect model.Expect) (*roles.Role, error) {
	return e.roles.Create(name, text, expect)
}

// DeleteRole removes a stored role.
func (e *Engine) DeleteRole(name string) error {
	return e.roles.Delete(name)
}

// ListModels returns the models offered by the active provider.
func (e *Engine) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	return e.provider.ListModels(ctx)
}

// Model returns the active model identifier.
func (e *Engine) Model() string {
	return e.provider.GetModel()
}

// Ping checks whether the active provider is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.provider.Ping(ctx)
}
