package search

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/samwarb/amazing-marvin/internal/marvin"
)

// DefaultGatherWorkers bounds concurrent fetches against the Marvin API.
// The bound protects the remote API, not correctness.
const DefaultGatherWorkers = 10

// Gatherer fetches full content for the selected projects concurrently.
type Gatherer struct {
	store   Store
	workers int
	log     *logrus.Logger
}

// NewGatherer creates a gatherer. workers <= 0 falls back to
// DefaultGatherWorkers.
func NewGatherer(store Store, workers int, log *logrus.Logger) *Gatherer {
	if workers <= 0 {
		workers = DefaultGatherWorkers
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gatherer{store: store, workers: workers, log: log}
}

// Gather returns one content block per project, in the same order as the
// input regardless of fetch completion order. Each project needs two
// independent fetches (document and children); a failure in either is
// logged and substituted with a safe default — the project's already-known
// note, or an empty task list — so one bad project never aborts the query.
func (g *Gatherer) Gather(ctx context.Context, projects []marvin.Item) []ContentBlock {
	blocks := make([]ContentBlock, len(projects))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := g.workers
	if workers > len(projects) {
		workers = len(projects)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// Writing by input index restores relevance order
				// no matter when each fetch finishes.
				blocks[i] = g.fetchOne(ctx, projects[i])
			}
		}()
	}

	for i := range projects {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return blocks
}

func (g *Gatherer) fetchOne(ctx context.Context, project marvin.Item) ContentBlock {
	block := ContentBlock{ID: project.ID, Title: project.Title}

	doc, err := g.store.Doc(ctx, project.ID)
	if err != nil {
		g.log.WithError(err).Warnf("could not fetch doc for %q, falling back to known note", project.Title)
		block.Note = strings.TrimSpace(project.Note)
	} else {
		block.Note = strings.TrimSpace(doc.Note)
	}

	children, err := g.store.Children(ctx, project.ID)
	if err != nil {
		g.log.WithError(err).Warnf("could not fetch children for %q, treating as empty", project.Title)
		return block
	}
	for _, child := range children {
		if !child.IsTask() {
			continue
		}
		block.Tasks = append(block.Tasks, TaskEntry{
			Title: child.Title,
			Done:  child.Done,
			Note:  child.Note,
		})
	}
	return block
}
