package tidy

import (
	"context"
	"slices"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/samwarb/amazing-marvin/internal/llm"
	"github.com/samwarb/amazing-marvin/internal/marvin"
)

const testDay = "2026-08-30"

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newTestRunner(store *mockStore, completer Completer) *Runner {
	norm := NewNormalizer(completer, llm.NewTracker(), DefaultMediaPolicy())
	runner := NewRunner(store, norm, quietLogger(), testDay, 0)
	runner.nowMillis = func() int64 { return 1700000000000 }
	return runner
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Given a misspelled undated task When Run called Then one batched update fixes title and date", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p1", Title: "Admin"}}
		store.Today = []marvin.Item{
			{ID: "t1", DB: marvin.DBTasks, Title: "buy mikl"},
		}
		completer := &mockCompleter{Replies: map[string]string{"buy mikl": "Buy milk"}}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if stats.SpellFixed != 1 || stats.DatesAssigned != 1 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		if len(store.Updates) != 1 {
			t.Fatalf("expected 1 batched update, got %d", len(store.Updates))
		}
		keys := store.setterKeys(store.Updates[0])
		for _, want := range []string{"title", "fieldUpdates.title", "day", "fieldUpdates.day", "firstScheduled"} {
			if !slices.Contains(keys, want) {
				t.Errorf("missing setter %q in %v", want, keys)
			}
		}
	})

	t.Run("Given an already tidy task When Run called Then nothing is written", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p1", Title: "Admin"}}
		store.Today = []marvin.Item{
			{ID: "t1", DB: marvin.DBTasks, Title: "Buy milk", Day: testDay, Note: "get oat milk"},
		}
		completer := &mockCompleter{Replies: map[string]string{"get oat milk": "get oat milk"}}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(store.Updates) != 0 {
			t.Errorf("expected no writes, got %d", len(store.Updates))
		}
		if stats != (Stats{}) {
			t.Errorf("expected zero stats, got %+v", stats)
		}
	})

	t.Run("Given completed tasks today When Run called Then their projects' notes are still checked", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p1", Title: "Admin"}}
		store.Today = []marvin.Item{
			{ID: "t1", DB: marvin.DBTasks, Title: "Done thing", Done: true, Day: testDay, ParentID: "p2"},
			{ID: "t2", DB: marvin.DBTasks, Title: "Unassigned thing", Done: true, Day: testDay, ParentID: marvin.ParentUnassigned},
		}
		store.Docs["p2"] = marvin.Item{ID: "p2", Title: "Garden", Note: "plant teh roses"}
		completer := &mockCompleter{Replies: map[string]string{"plant teh roses": "🌹 Plant the roses"}}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if stats.NotesTidied != 1 {
			t.Errorf("expected 1 tidied note, got %d", stats.NotesTidied)
		}
		if len(store.Updates) != 1 || store.Updates[0].ItemID != "p2" {
			t.Fatalf("expected one update to p2, got %+v", store.Updates)
		}
		keys := store.setterKeys(store.Updates[0])
		if !slices.Contains(keys, "note") || !slices.Contains(keys, "fieldUpdates.note") {
			t.Errorf("unexpected setters: %v", keys)
		}
	})

	t.Run("Given an exact no-op tidy When Run called Then the project note is not rewritten", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p1", Title: "Admin"}}
		store.Today = []marvin.Item{
			{ID: "t1", DB: marvin.DBTasks, Title: "Task", Day: testDay, ParentID: "p2"},
		}
		store.Docs["p2"] = marvin.Item{ID: "p2", Title: "Garden", Note: "🌹 Plant the roses"}
		completer := &mockCompleter{Replies: map[string]string{"🌹 Plant the roses": "🌹 Plant the roses"}}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if len(store.Updates) != 0 {
			t.Errorf("no-op tidy must not write, got %+v", store.Updates)
		}
		if stats.NotesTidied != 0 {
			t.Errorf("expected 0 tidied notes, got %d", stats.NotesTidied)
		}
	})

	t.Run("Given a failing project doc fetch When Run called Then the pass continues", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p1", Title: "Admin"}}
		store.Today = []marvin.Item{
			{ID: "t1", DB: marvin.DBTasks, Title: "Task", Day: testDay, ParentID: "broken"},
		}
		store.DocErr["broken"] = errMockStore
		completer := &mockCompleter{}

		_, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("per-project fetch failure must not abort the run: %v", err)
		}
	})

	t.Run("Given inbox tasks When Run called Then they are filed to a project with a date", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{
			{ID: "p1", Title: "Admin"},
			{ID: "p2", Title: "Garden"},
			{ID: "p3", Title: "Old finished thing", Done: true},
		}
		store.Inbox = []marvin.Item{
			{ID: "i1", DB: marvin.DBTasks, Title: "Water the roses"},
			{ID: "i2", DB: marvin.DBTasks, Title: "Mystery task"},
			{ID: "i3", DB: marvin.DBTasks, Title: "Already done", Done: true},
		}
		completer := &mockCompleter{Replies: map[string]string{
			"Water the roses": "p2",
			"Mystery task":    "UNSURE",
		}}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if stats.ProjectsAssigned != 2 || stats.DatesAssigned != 2 {
			t.Errorf("unexpected stats: %+v", stats)
		}
		if len(store.Updates) != 2 {
			t.Fatalf("expected 2 updates (done task skipped), got %d", len(store.Updates))
		}

		parentOf := map[string]string{}
		for _, u := range store.Updates {
			for _, s := range u.Setters {
				if s.Key == "parentId" {
					parentOf[u.ItemID] = s.Val.(string)
				}
			}
		}
		if parentOf["i1"] != "p2" {
			t.Errorf("expected i1 filed to p2, got %q", parentOf["i1"])
		}
		if parentOf["i2"] != "p1" {
			t.Errorf("expected i2 to fall back to Admin, got %q", parentOf["i2"])
		}
	})

	t.Run("Given no Admin project When Run called Then inbox assignment is skipped", func(t *testing.T) {
		store := newMockStore()
		store.CategoriesItems = []marvin.Item{{ID: "p2", Title: "Garden"}}
		store.Inbox = []marvin.Item{
			{ID: "i1", DB: marvin.DBTasks, Title: "Mystery task", Day: testDay},
		}
		completer := &mockCompleter{}

		stats, err := newTestRunner(store, completer).Run(ctx)

		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if stats.ProjectsAssigned != 0 {
			t.Errorf("expected no assignments, got %d", stats.ProjectsAssigned)
		}
		if len(store.Updates) != 0 {
			t.Errorf("expected no writes, got %+v", store.Updates)
		}
	})
}
