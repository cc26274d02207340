package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/samwarb/amazing-marvin/internal/llm"
)

// NoRelevantProjects is returned without a completion call when the
// gatherer produced nothing to ground an answer in.
const NoRelevantProjects = "No relevant projects were found for your query."

const generatorSystemPrompt = "You are a personal assistant with access to a user's task manager data. " +
	"Answer the user's question directly and concisely using ONLY the information " +
	"provided below. " +
	"If the answer is clearly present, state it plainly. " +
	"If the information is not found in the provided data, say so explicitly — " +
	"do not guess or hallucinate. " +
	"Format your answer for readability in a terminal or log output."

// Generator produces a natural-language answer grounded strictly in the
// gathered content. Refusing to answer beyond the supplied context is part
// of the contract, not a style choice.
type Generator struct {
	completer Completer
	usage     *llm.Tracker
}

// NewGenerator creates an answer generator.
func NewGenerator(completer Completer, usage *llm.Tracker) *Generator {
	return &Generator{completer: completer, usage: usage}
}

// Answer renders the content blocks as grounding context and asks the model
// for an answer. An empty block list short-circuits to NoRelevantProjects
// without spending a completion call.
func (g *Generator) Answer(ctx context.Context, query string, blocks []ContentBlock) (string, error) {
	if len(blocks) == 0 {
		return NoRelevantProjects, nil
	}

	result, err := g.completer.Complete(ctx, llm.CompletionRequest{
		System:      generatorSystemPrompt,
		User:        fmt.Sprintf("Question: %s\n\nTask manager data:\n%s", query, renderContext(blocks)),
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	g.usage.Add(result.Usage)

	return strings.TrimSpace(result.Text), nil
}

// renderContext formats each block as a labeled section the model can quote
// from.
func renderContext(blocks []ContentBlock) string {
	sections := make([]string, 0, len(blocks))
	for _, block := range blocks {
		var b strings.Builder
		fmt.Fprintf(&b, "== PROJECT: %s ==\n", block.Title)

		if block.Note != "" {
			fmt.Fprintf(&b, "Notes:\n%s\n", block.Note)
		} else {
			b.WriteString("Notes: (none)\n")
		}

		if len(block.Tasks) > 0 {
			b.WriteString("Tasks:\n")
			for _, t := range block.Tasks {
				status := "active"
				if t.Done {
					status = "DONE"
				}
				fmt.Fprintf(&b, "  - [%s] %s", status, t.Title)
				if note := strings.TrimSpace(t.Note); note != "" {
					fmt.Fprintf(&b, "\n    Note: %s", note)
				}
				b.WriteString("\n")
			}
		} else {
			b.WriteString("Tasks: (none)\n")
		}

		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	return strings.Join(sections, "\n\n")
}
