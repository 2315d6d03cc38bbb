package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ReportersKey is the member holding reporter rows in a serialised snapshot.
const ReportersKey = "reporters"

// Snapshot is a detached copy of a form: flat field values plus reporter rows.
// Its JSON form is an object of field values with a "reporters" array.
type Snapshot struct {
	Values    map[string]any
	Reporters []ReporterEntry
}

// MarshalJSON flattens the snapshot into a single object.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Values)+1)
	for k, v := range s.Values {
		out[k] = v
	}
	rows := make([]ReporterEntry, 0, len(s.Reporters))
	for _, row := range s.Reporters {
		if row.Resolved() {
			rows = append(rows, row)
		}
	}
	out[ReportersKey] = rows
	return json.Marshal(out)
}

// UnmarshalJSON reads numbers as json.Number so integers survive untouched.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("form: decode snapshot: %w", err)
	}

	s.Values = make(map[string]any, len(raw))
	s.Reporters = nil
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == ReportersKey {
			if err := json.Unmarshal(raw[k], &s.Reporters); err != nil {
				return fmt.Errorf("form: decode reporters: %w", err)
			}
			continue
		}
		fieldDec := json.NewDecoder(bytes.NewReader(raw[k]))
		fieldDec.UseNumber()
		var v any
		if err := fieldDec.Decode(&v); err != nil {
			return fmt.Errorf("form: decode field %q: %w", k, err)
		}
		switch v.(type) {
		case nil, string, json.Number, bool:
			s.Values[k] = v
		default:
			return fmt.Errorf("form: field %q must be a scalar", k)
		}
	}
	return nil
}

// Snapshot copies the current values and reporter rows.
func (s *State) Snapshot() Snapshot {
	return Snapshot{Values: s.Values(), Reporters: s.Reporters()}
}

// Restore replaces the state's values and rows with snap. Reporter rows are
// normalised against the current agent list.
func (s *State) Restore(snap Snapshot) {
	s.mu.Lock()
	s.values = make(map[string]any, len(snap.Values))
	for k, v := range snap.Values {
		s.values[k] = v
	}
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeField})
	s.RestoreReporters(snap.Reporters)
}
