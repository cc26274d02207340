package search

import (
	"context"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

// Completer generates text from a system+user prompt.
// Implementations: llm.Client
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResult, error)
}

// Store is the slice of the Marvin API the search pipeline reads from.
// Implementations: marvin.Client
type Store interface {
	// ActiveProjects lists all non-completed projects.
	ActiveProjects(ctx context.Context) ([]marvin.Item, error)

	// Doc fetches the full document for an item, note included.
	Doc(ctx context.Context, id string) (marvin.Item, error)

	// Children lists the direct children of a parent.
	Children(ctx context.Context, parentID string) ([]marvin.Item, error)
}
