package form

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownField is returned when a name is not part of the form's schema.
var ErrUnknownField = errors.New("unknown form field")

// State maps field names to raw string values.
type State map[string]string

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ChangeListener is called after a field changes.
type ChangeListener func(name, value string)

// Store holds the field values of one form instance. Every schema field is
// present from construction; unknown names are rejected.
type Store struct {
	mu        sync.RWMutex
	schema    Schema
	state     State
	listeners []ChangeListener
}

func NewStore(schema Schema) *Store {
	state := make(State, len(schema.Fields))
	for _, f := range schema.Fields {
		state[f.Name] = ""
	}
	return &Store{schema: schema, state: state}
}

func (s *Store) Schema() Schema {
	return s.schema
}

// Fields returns the ordered schema fields for rendering.
func (s *Store) Fields() []Field {
	return append([]Field(nil), s.schema.Fields...)
}

// Get returns the current value, "" for unknown names.
func (s *Store) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state[name]
}

// Set replaces exactly one entry. No validation happens here.
func (s *Store) Set(name, value string) error {
	s.mu.Lock()
	if _, ok := s.state[name]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.state[name] = value
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(name, value)
	}
	return nil
}

// SetAll applies several values. Names are checked before anything changes,
// so an unknown name leaves the store untouched.
func (s *Store) SetAll(values map[string]string) error {
	s.mu.RLock()
	for name := range values {
		if _, ok := s.state[name]; !ok {
			s.mu.RUnlock()
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	s.mu.RUnlock()

	for _, name := range s.schema.Names() {
		if v, ok := values[name]; ok {
			if err := s.Set(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// OnChange registers a listener for field changes.
func (s *Store) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
