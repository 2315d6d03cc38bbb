package form

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-assetform/pkg/agents"
)

// ErrRowOutOfRange is returned when a reporter index does not exist.
var ErrRowOutOfRange = errors.New("form: reporter row out of range")

// ChangeKind distinguishes field edits from reporter list edits.
type ChangeKind string

const (
	ChangeField     ChangeKind = "field"
	ChangeReporters ChangeKind = "reporters"
)

// Change describes a single state mutation delivered to listeners.
type Change struct {
	Kind  ChangeKind
	Field string
	Value any
}

// Listener is notified after every mutation.
type Listener func(Change)

// State is the form's mutable model. It is owned by one form instance; the
// mutex only guards against listeners re-entering from other goroutines.
type State struct {
	mu        sync.RWMutex
	values    map[string]any
	reporters []ReporterEntry
	agents    []agents.Agent
	listeners map[int]Listener
	nextSub   int
	newID     func() string
}

// Option configures a State.
type Option func(*State)

// WithIDGenerator overrides reporter row ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *State) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithValues seeds field values.
func WithValues(values map[string]any) Option {
	return func(s *State) {
		for k, v := range values {
			s.values[k] = v
		}
	}
}

// WithAgents seeds the agent list used to resolve reporter input.
func WithAgents(list []agents.Agent) Option {
	return func(s *State) {
		s.agents = append([]agents.Agent(nil), list...)
	}
}

// NewState returns an empty form with a single sentinel reporter row.
func NewState(options ...Option) *State {
	s := &State{
		values:    make(map[string]any),
		listeners: make(map[int]Listener),
		newID:     uuid.NewString,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.reporters = []ReporterEntry{s.sentinel()}
	return s
}

// OnChange registers a listener and returns a function removing it.
func (s *State) OnChange(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *State) notify(change Change) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.listeners[i]; ok {
			listeners = append(listeners, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(change)
	}
}

// Setter binds the named field. The returned function stores a value and
// notifies listeners.
func (s *State) Setter(name string) func(value any) {
	return func(value any) {
		s.Set(name, value)
	}
}

// Set stores value under name and notifies listeners.
func (s *State) Set(name string, value any) {
	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
	s.notify(Change{Kind: ChangeField, Field: name, Value: value})
}

// Value returns the raw value stored under name.
func (s *State) Value(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// String returns the field formatted as a string; missing fields are "".
func (s *State) String(name string) string {
	v, ok := s.Value(name)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// Values returns a copy of all field values.
func (s *State) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetAgents replaces the agent list used to resolve reporter input.
func (s *State) SetAgents(list []agents.Agent) {
	s.mu.Lock()
	s.agents = append([]agents.Agent(nil), list...)
	s.mu.Unlock()
}

// Agents returns the cached agent list.
func (s *State) Agents() []agents.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]agents.Agent(nil), s.agents...)
}
