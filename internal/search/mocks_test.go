package search

import (
	"context"
	"errors"
	"sync"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

// Common test errors
var (
	ErrMockCompletion = errors.New("mock completion error")
	ErrMockStore      = errors.New("mock store error")
)

// MockCompleter implements Completer for testing. Responses are consumed in
// order; when they run out the last one repeats.
type MockCompleter struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	CallCount int
	LastReq   llm.CompletionRequest
	Usage     llm.Usage
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastReq = req

	if m.Err != nil {
		return llm.CompletionResult{}, m.Err
	}

	idx := m.CallCount - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	text := ""
	if idx >= 0 {
		text = m.Responses[idx]
	}
	return llm.CompletionResult{Text: text, Usage: m.Usage}, nil
}

// MockStore implements Store for testing.
type MockStore struct {
	mu       sync.Mutex
	Projects []marvin.Item
	Docs     map[string]marvin.Item
	Kids     map[string][]marvin.Item

	DocErr      map[string]error
	ChildrenErr map[string]error

	// BeforeDoc runs before each Doc call, outside the lock, so tests can
	// inject per-project latency.
	BeforeDoc func(id string)
}

func NewMockStore() *MockStore {
	return &MockStore{
		Docs:        map[string]marvin.Item{},
		Kids:        map[string][]marvin.Item{},
		DocErr:      map[string]error{},
		ChildrenErr: map[string]error{},
	}
}

func (m *MockStore) ActiveProjects(ctx context.Context) ([]marvin.Item, error) {
	return m.Projects, nil
}

func (m *MockStore) Doc(ctx context.Context, id string) (marvin.Item, error) {
	if m.BeforeDoc != nil {
		m.BeforeDoc(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.DocErr[id]; err != nil {
		return marvin.Item{}, err
	}
	doc, ok := m.Docs[id]
	if !ok {
		return marvin.Item{}, ErrMockStore
	}
	return doc, nil
}

func (m *MockStore) Children(ctx context.Context, parentID string) ([]marvin.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ChildrenErr[parentID]; err != nil {
		return nil, err
	}
	return m.Kids[parentID], nil
}
