package form

import "github.com/goliatone/go-assetform/pkg/agents"

// ReporterEntry is one row of the "Authorize Reporters" list.
type ReporterEntry struct {
	ID         string   `json:"id"`
	Input      string   `json:"input"`
	Key        string   `json:"key"`
	Properties []string `json:"properties"`
}

// Resolved reports whether the row maps to an agent.
func (r ReporterEntry) Resolved() bool {
	return r.Key != ""
}

func (r ReporterEntry) clone() ReporterEntry {
	out := r
	if r.Properties != nil {
		out.Properties = append(make([]string, 0, len(r.Properties)), r.Properties...)
	}
	return out
}

func (s *State) sentinel() ReporterEntry {
	return ReporterEntry{ID: s.newID(), Properties: []string{}}
}

// Reporters returns a copy of the reporter rows in order.
func (s *State) Reporters() []ReporterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ReporterEntry, len(s.reporters))
	for i, row := range s.reporters {
		out[i] = row.clone()
	}
	return out
}

// ReporterIndex returns the current position of the row with id, or -1.
func (s *State) ReporterIndex(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, row := range s.reporters {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// SetReporterInput records the text typed into row i and re-resolves its key
// against the cached agents. Any previously matched key is cleared first.
func (s *State) SetReporterInput(i int, input string) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.reporters) {
		s.mu.Unlock()
		return ErrRowOutOfRange
	}
	row := &s.reporters[i]
	row.Input = input
	row.Key = ""
	if agent, ok := agents.Resolve(s.agents, input); ok {
		row.Key = agent.Key
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReporters})
	return nil
}

// SetReporterProperties replaces the authorized properties of row i.
func (s *State) SetReporterProperties(i int, properties []string) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.reporters) {
		s.mu.Unlock()
		return ErrRowOutOfRange
	}
	s.reporters[i].Properties = append([]string{}, properties...)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReporters})
	return nil
}

// UpdateReporterRow runs after row i loses focus. The row's input is resolved
// against the cached agents; an unresolved row that is not last is removed,
// and a resolved last row gets a fresh sentinel appended after it.
func (s *State) UpdateReporterRow(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.reporters) {
		s.mu.Unlock()
		return ErrRowOutOfRange
	}

	row := &s.reporters[i]
	row.Key = ""
	if agent, ok := agents.Resolve(s.agents, row.Input); ok {
		row.Key = agent.Key
	}

	last := len(s.reporters) - 1
	switch {
	case !row.Resolved() && i != last:
		s.reporters = append(s.reporters[:i], s.reporters[i+1:]...)
	case row.Resolved() && i == last:
		s.reporters = append(s.reporters, s.sentinel())
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReporters})
	return nil
}

// RestoreReporters replaces the rows wholesale (for example from a posted
// form) and normalises them.
func (s *State) RestoreReporters(rows []ReporterEntry) {
	s.mu.Lock()
	s.reporters = make([]ReporterEntry, 0, len(rows)+1)
	for _, row := range rows {
		clone := row.clone()
		if clone.ID == "" {
			clone.ID = s.newID()
		}
		if clone.Input == "" {
			clone.Input = clone.Key
		}
		if clone.Properties == nil {
			clone.Properties = []string{}
		}
		s.reporters = append(s.reporters, clone)
	}
	s.normalizeLocked()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReporters})
}

// NormalizeReporters applies the blur step to every row at once: rows are
// re-resolved, unresolved rows other than the last are dropped, and a
// sentinel is appended when the last row is resolved.
func (s *State) NormalizeReporters() {
	s.mu.Lock()
	s.normalizeLocked()
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeReporters})
}

func (s *State) normalizeLocked() {
	if len(s.reporters) == 0 {
		s.reporters = []ReporterEntry{s.sentinel()}
		return
	}

	last := len(s.reporters) - 1
	kept := make([]ReporterEntry, 0, len(s.reporters)+1)
	for i, row := range s.reporters {
		row.Key = ""
		if agent, ok := agents.Resolve(s.agents, row.Input); ok {
			row.Key = agent.Key
		}
		if !row.Resolved() && i != last {
			continue
		}
		kept = append(kept, row)
	}
	if kept[len(kept)-1].Resolved() {
		kept = append(kept, s.sentinel())
	}
	s.reporters = kept
}

// ResolvedReporters returns the rows that map to an agent, in order.
func (s *State) ResolvedReporters() []ReporterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ReporterEntry, 0, len(s.reporters))
	for _, row := range s.reporters {
		if row.Resolved() {
			out = append(out, row.clone())
		}
	}
	return out
}
