// Package search implements the question-answering pipeline: one completion
// call narrows the project roster to a relevant subset, full content for
// that subset is fetched concurrently, and a second completion call
// synthesizes an answer grounded strictly in the fetched text.
package search

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/samwarb/amazing-marvin/internal/llm"
)

// Options tunes a Pipeline. Zero values fall back to the defaults.
type Options struct {
	MaxRelevant int // cap on projects per query, default DefaultMaxRelevant
	Workers     int // concurrent fetch bound, default DefaultGatherWorkers
}

// Pipeline wires selector, gatherer and generator over one store and one
// completion client.
type Pipeline struct {
	store     Store
	selector  *Selector
	gatherer  *Gatherer
	generator *Generator
	log       *logrus.Logger
}

// NewPipeline assembles the three phases.
func NewPipeline(store Store, completer Completer, usage *llm.Tracker, log *logrus.Logger, opts Options) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		store:     store,
		selector:  NewSelector(completer, usage, opts.MaxRelevant),
		gatherer:  NewGatherer(store, opts.Workers, log),
		generator: NewGenerator(completer, usage),
		log:       log,
	}
}

// Run answers one query. The query must be non-empty; resolving an empty
// query is the caller's problem. Selector and generator failures are fatal
// for the run, per-project fetch failures are not.
func (p *Pipeline) Run(ctx context.Context, query string) (Result, error) {
	p.log.Info("fetching all projects")
	projects, err := p.store.ActiveProjects(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}
	p.log.Infof("found %d active projects", len(projects))

	p.log.Info("identifying relevant projects")
	relevant, err := p.selector.Select(ctx, query, projects)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	titles := make([]string, len(relevant))
	for i, proj := range relevant {
		titles[i] = proj.Title
	}

	if len(relevant) == 0 {
		p.log.Info("no relevant projects identified")
		answer, _ := p.generator.Answer(ctx, query, nil)
		return Result{Query: query, Answer: answer}, nil
	}
	p.log.Infof("relevant projects: %v", titles)

	p.log.Info("gathering project content")
	blocks := p.gatherer.Gather(ctx, relevant)

	p.log.Info("generating answer")
	answer, err := p.generator.Answer(ctx, query, blocks)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	return Result{Query: query, Answer: answer, Projects: titles}, nil
}
