package agents

import (
	"sort"
	"strings"
)

// Option is a value/label pair for reporter inputs: the agent key and its
// display name.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Search filters list by a case-insensitive substring of name or key. Name
// prefix matches sort first, then by name.
func Search(list []Agent, query string, limit int, cfg SearchConfig) []Agent {
	limit = cfg.normalized().limit(limit)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if !cfg.ListOnEmpty {
			return nil
		}
		sorted := append([]Agent(nil), list...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Name < sorted[j].Name
		})
		if len(sorted) > limit {
			sorted = sorted[:limit]
		}
		return sorted
	}

	q := strings.ToLower(query)
	matches := make([]matchedAgent, 0, 16)
	for _, agent := range list {
		lowerName := strings.ToLower(agent.Name)
		lowerKey := strings.ToLower(agent.Key)
		if !strings.Contains(lowerName, q) && !strings.Contains(lowerKey, q) {
			continue
		}
		matches = append(matches, matchedAgent{
			agent:    agent,
			isPrefix: strings.HasPrefix(lowerName, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].agent.Name < matches[j].agent.Name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Agent, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.agent)
	}
	return out
}

// SearchOptions is Search mapped onto value/label options. It never returns
// nil so an empty result encodes as [].
func SearchOptions(list []Agent, query string, limit int, cfg SearchConfig) []Option {
	results := Search(list, query, limit, cfg)
	out := make([]Option, 0, len(results))
	for _, agent := range results {
		label := agent.Name
		if label == "" {
			label = agent.Key
		}
		out = append(out, Option{Value: agent.Key, Label: label})
	}
	return out
}

type matchedAgent struct {
	agent    Agent
	isPrefix bool
}
