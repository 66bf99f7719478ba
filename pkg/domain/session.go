package domain

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Session holds per-conversation state, the equivalent of an agent tool context.
type Session struct {
	ID        string         `json:"id"`
	AppName   string         `json:"app_name,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	State     map[string]any `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		State:     make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a copy whose State map can be mutated independently.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.State = make(map[string]any, len(s.State))
	for k, v := range s.State {
		cp.State[k] = v
	}
	return &cp
}

// Set stores a value and bumps UpdatedAt.
func (s *Session) Set(key string, value any) {
	if s.State == nil {
		s.State = make(map[string]any)
	}
	s.State[key] = value
	s.UpdatedAt = time.Now().UTC()
}

// Flag returns a boolean state entry.
func (s *Session) Flag(key string) bool {
	v, _ := s.State[key].(bool)
	return v
}

// LastResults decodes the results of the latest tool call.
// The stored value is either []Result (memory store) or its JSON-decoded form
// ([]any of map[string]any) after a round-trip through an external store.
func (s *Session) LastResults() ([]Result, error) {
	raw, ok := s.State[KeyLastResult]
	if !ok || raw == nil {
		return nil, nil
	}
	if rs, ok := raw.([]Result); ok {
		return rs, nil
	}

	var out []Result
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", KeyLastResult, err)
	}
	return out, nil
}
