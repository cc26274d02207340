package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

// DefaultMaxRelevant caps how many projects one query fans out to.
const DefaultMaxRelevant = 5

const selectorSystemPrompt = "You are a search assistant for a personal task manager. " +
	"Given a user query and a list of projects, identify which projects " +
	"are most likely to contain the answer. " +
	"Return ONLY a JSON array of the relevant project IDs (strings), " +
	"ordered by relevance, maximum %d items. " +
	"If no project seems relevant, return an empty array []. " +
	"Return valid JSON only — no explanation, no markdown."

// Selector narrows the full project roster down to the few projects most
// likely to contain the answer, using a single completion call.
type Selector struct {
	completer Completer
	usage     *llm.Tracker
	max       int
}

// NewSelector creates a selector. max <= 0 falls back to DefaultMaxRelevant.
func NewSelector(completer Completer, usage *llm.Tracker, max int) *Selector {
	if max <= 0 {
		max = DefaultMaxRelevant
	}
	return &Selector{completer: completer, usage: usage, max: max}
}

// Select returns at most s.max projects from the roster, ordered by
// relevance to the query. A transport failure is returned as an error;
// malformed model output is not — it degrades to an empty result so a bad
// completion can never crash the pipeline. IDs the model invents that are
// not in the roster are dropped.
func (s *Selector) Select(ctx context.Context, query string, projects []marvin.Item) ([]marvin.Item, error) {
	var roster strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&roster, "ID: %s | Title: %s\n", p.ID, p.Title)
	}

	result, err := s.completer.Complete(ctx, llm.CompletionRequest{
		System:      fmt.Sprintf(selectorSystemPrompt, s.max),
		User:        fmt.Sprintf("Query: %s\n\nProjects:\n%s", query, roster.String()),
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("relevance selection: %w", err)
	}
	s.usage.Add(result.Usage)

	ids := parseIDList(result.Text)

	byID := make(map[string]marvin.Item, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	var relevant []marvin.Item
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			relevant = append(relevant, p)
		}
		if len(relevant) == s.max {
			break
		}
	}
	return relevant, nil
}

// parseIDList extracts a JSON array of id strings from model output.
// Markdown code fences are stripped first; anything that still isn't a JSON
// array of strings parses as empty rather than failing.
func parseIDList(text string) []string {
	cleaned := stripCodeFences(text)

	var ids []string
	if err := json.Unmarshal([]byte(cleaned), &ids); err != nil {
		return nil
	}
	return ids
}

// stripCodeFences removes a surrounding markdown code fence, with optional
// language tag, if present.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}
