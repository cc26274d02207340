package tidy

import (
	"context"
	"fmt"
	"strings"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

const assignSystemPrompt = "You are a task organiser. Given a task title and a list of projects, " +
	"return the single best matching project ID. " +
	"If unsure, reply with exactly: UNSURE. " +
	"Return ONLY the project ID or UNSURE — nothing else."

// unsureReply is the sentinel the model returns when no project is a
// confident match.
const unsureReply = "UNSURE"

// AssignProject picks the best-matching project for a task title. An UNSURE
// reply, or an id not present in the roster, falls back to fallbackID — the
// same defense the selector applies to hallucinated ids.
func (n *Normalizer) AssignProject(ctx context.Context, taskTitle string, projects []marvin.Item, fallbackID string) (id, title string, err error) {
	var roster strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&roster, "- ID: %s | Name: %s\n", p.ID, p.Title)
	}

	result, err := n.completer.Complete(ctx, llm.CompletionRequest{
		System:      assignSystemPrompt,
		User:        fmt.Sprintf("Task: %s\n\nProjects:\n%s", taskTitle, roster.String()),
		Temperature: 0,
	})
	if err != nil {
		return "", "", fmt.Errorf("assign project: %w", err)
	}
	n.usage.Add(result.Usage)

	answer := strings.TrimSpace(result.Text)
	if answer != unsureReply {
		for _, p := range projects {
			if p.ID == answer {
				return p.ID, p.Title, nil
			}
		}
	}

	for _, p := range projects {
		if p.ID == fallbackID {
			return fallbackID, p.Title, nil
		}
	}
	return fallbackID, "Admin", nil
}
