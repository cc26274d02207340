// Package tidy holds the maintenance transforms: single-shot completion
// calls that fix task titles, clean up notes and assign inbox tasks to
// projects, plus the daily batch runner that applies them.
package tidy

import (
	"context"
	"fmt"
	"strings"

	"github.com/samwarb/amazing-marvin/internal/llm"
)

const titleSystemPrompt = "You are a task title editor. Fix spelling, capitalisation and grammar only. " +
	"Return ONLY the corrected title — no explanation, no quotes. " +
	"If already correct, return it unchanged."

const noteSystemPrompt = "You are a professional note-taker. Tidy up the following note by:\n" +
	"1. Fixing spelling, grammar or punctuation mistakes in the WRITTEN TEXT.\n" +
	"2. Adding relevant emojis at the start of key text lines or sections.\n" +
	"3. Improving formatting — use bullet points where appropriate, clear line breaks.\n" +
	"4. Keeping ALL original meaning and content — do NOT remove or invent information.\n" +
	"5. Do NOT change or remove any image links, markdown image tags, or URLs.\n" +
	"6. If there is a markdown image like ![...](...), keep that line exactly as it is.\n\n" +
	"Return ONLY the tidied note. No explanation, no preamble."

// Completer generates text from a system+user prompt.
// Implementations: llm.Client
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResult, error)
}

// Normalizer runs the stateless text transforms. Both transforms are
// expected to be idempotent: the model is instructed to return already-tidy
// input unchanged, and callers compare output to input before writing back.
type Normalizer struct {
	completer Completer
	usage     *llm.Tracker
	policy    MediaPolicy
}

// NewNormalizer creates a normalizer with the given media-skip policy.
func NewNormalizer(completer Completer, usage *llm.Tracker, policy MediaPolicy) *Normalizer {
	return &Normalizer{completer: completer, usage: usage, policy: policy}
}

// FixTitle corrects spelling, grammar and capitalisation. Blank input is
// returned unchanged without a completion call.
func (n *Normalizer) FixTitle(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	result, err := n.completer.Complete(ctx, llm.CompletionRequest{
		System:      titleSystemPrompt,
		User:        text,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("fix title: %w", err)
	}
	n.usage.Add(result.Usage)
	return strings.TrimSpace(result.Text), nil
}

// TidyNote cleans up a note's prose while preserving embedded media and
// links verbatim. Blank notes and media-only notes (per the policy) are
// returned unchanged without a completion call.
func (n *Normalizer) TidyNote(ctx context.Context, note, contextTitle string) (string, error) {
	if strings.TrimSpace(note) == "" {
		return note, nil
	}
	if n.policy.IsMediaOnly(note) {
		return note, nil
	}

	result, err := n.completer.Complete(ctx, llm.CompletionRequest{
		System: noteSystemPrompt,
		User: fmt.Sprintf("Context (task/project title): %s\n\n"+
			"Tidy the text in this note, but do not change any images or links:\n\n%s",
			contextTitle, note),
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("tidy note: %w", err)
	}
	n.usage.Add(result.Usage)
	return strings.TrimSpace(result.Text), nil
}
