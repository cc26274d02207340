package tidy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

var (
	errMockCompletion = errors.New("mock completion error")
	errMockStore      = errors.New("mock store error")
)

// mockCompleter scripts responses keyed by the user prompt's suffix, or
// echoes the input back when nothing matches — which is exactly the
// "already tidy" behavior the real model is instructed to have.
type mockCompleter struct {
	// Replies maps a substring of the user prompt to the reply.
	Replies   map[string]string
	Err       error
	CallCount int
	LastReq   llm.CompletionRequest
	Usage     llm.Usage
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResult, error) {
	m.CallCount++
	m.LastReq = req
	if m.Err != nil {
		return llm.CompletionResult{}, m.Err
	}
	for needle, reply := range m.Replies {
		if strings.Contains(req.User, needle) {
			return llm.CompletionResult{Text: reply, Usage: m.Usage}, nil
		}
	}
	return llm.CompletionResult{Text: strings.TrimSpace(req.User), Usage: m.Usage}, nil
}

// mockStore implements Store for runner tests and records every write.
type mockStore struct {
	CategoriesItems []marvin.Item
	Today           []marvin.Item
	Inbox           []marvin.Item
	Docs            map[string]marvin.Item
	DocErr          map[string]error

	Updates []recordedUpdate
}

type recordedUpdate struct {
	ItemID  string
	Setters []marvin.Setter
}

func newMockStore() *mockStore {
	return &mockStore{
		Docs:   map[string]marvin.Item{},
		DocErr: map[string]error{},
	}
}

func (m *mockStore) Categories(ctx context.Context) ([]marvin.Item, error) {
	return m.CategoriesItems, nil
}

func (m *mockStore) TodayItems(ctx context.Context, date string) ([]marvin.Item, error) {
	return m.Today, nil
}

func (m *mockStore) Children(ctx context.Context, parentID string) ([]marvin.Item, error) {
	if parentID == marvin.ParentUnassigned {
		return m.Inbox, nil
	}
	return nil, nil
}

func (m *mockStore) Doc(ctx context.Context, id string) (marvin.Item, error) {
	if err := m.DocErr[id]; err != nil {
		return marvin.Item{}, err
	}
	doc, ok := m.Docs[id]
	if !ok {
		return marvin.Item{}, fmt.Errorf("doc %s: %w", id, errMockStore)
	}
	return doc, nil
}

func (m *mockStore) UpdateDoc(ctx context.Context, itemID string, setters []marvin.Setter) error {
	m.Updates = append(m.Updates, recordedUpdate{ItemID: itemID, Setters: setters})
	return nil
}

func (m *mockStore) setterKeys(update recordedUpdate) []string {
	keys := make([]string, len(update.Setters))
	for i, s := range update.Setters {
		keys[i] = s.Key
	}
	return keys
}
