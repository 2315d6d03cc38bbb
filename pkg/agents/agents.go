package agents

import (
	"context"
	"errors"
	"fmt"
)

// ErrAgentNotFound is returned when input does not match any agent.
var ErrAgentNotFound = errors.New("agents: agent not found")

// Agent is a participant registered on the ledger.
type Agent struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Directory lists agents and identifies the current user.
type Directory interface {
	Agents(ctx context.Context) ([]Agent, error)
	PublicKey() string
}

// Visible returns the directory listing without the current user.
func Visible(ctx context.Context, dir Directory) ([]Agent, error) {
	if dir == nil {
		return nil, errors.New("agents: directory is nil")
	}
	all, err := dir.Agents(ctx)
	if err != nil {
		return nil, fmt.Errorf("agents: list: %w", err)
	}
	return ExcludeKey(all, dir.PublicKey()), nil
}

// ExcludeKey drops every agent whose key equals key.
func ExcludeKey(list []Agent, key string) []Agent {
	out := make([]Agent, 0, len(list))
	for _, agent := range list {
		if key != "" && agent.Key == key {
			continue
		}
		out = append(out, agent)
	}
	return out
}

// Resolve finds the first agent whose name or key equals input exactly.
func Resolve(list []Agent, input string) (Agent, bool) {
	if input == "" {
		return Agent{}, false
	}
	for _, agent := range list {
		if agent.Name == input || agent.Key == input {
			return agent, true
		}
	}
	return Agent{}, false
}

// Lookup is Resolve with an error for callers that need one.
func Lookup(list []Agent, input string) (Agent, error) {
	agent, ok := Resolve(list, input)
	if !ok {
		return Agent{}, fmt.Errorf("%w: %q", ErrAgentNotFound, input)
	}
	return agent, nil
}

// StaticDirectory serves a fixed agent list. Useful offline and in tests.
type StaticDirectory struct {
	Key  string
	List []Agent
}

// NewStaticDirectory builds a StaticDirectory owned by publicKey.
func NewStaticDirectory(publicKey string, list ...Agent) *StaticDirectory {
	return &StaticDirectory{
		Key:  publicKey,
		List: append([]Agent(nil), list...),
	}
}

// Agents implements Directory.
func (d *StaticDirectory) Agents(ctx context.Context) ([]Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	return append([]Agent(nil), d.List...), nil
}

// PublicKey implements Directory.
func (d *StaticDirectory) PublicKey() string {
	if d == nil {
		return ""
	}
	return d.Key
}
