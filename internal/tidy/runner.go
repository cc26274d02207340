package tidy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/samwarb/amazing-marvin/internal/marvin"
)

// DefaultWriteDelay spaces out write calls so the maintenance pass doesn't
// hammer the Marvin API.
const DefaultWriteDelay = 500 * time.Millisecond

// fallbackProjectTitle is the project that collects inbox tasks the model
// couldn't place.
const fallbackProjectTitle = "admin"

// Store is the slice of the Marvin API the maintenance pass needs.
// Implementations: marvin.Client
type Store interface {
	Categories(ctx context.Context) ([]marvin.Item, error)
	TodayItems(ctx context.Context, date string) ([]marvin.Item, error)
	Children(ctx context.Context, parentID string) ([]marvin.Item, error)
	Doc(ctx context.Context, id string) (marvin.Item, error)
	UpdateDoc(ctx context.Context, itemID string, setters []marvin.Setter) error
}

// Stats counts what the maintenance pass changed.
type Stats struct {
	SpellFixed       int
	DatesAssigned    int
	ProjectsAssigned int
	NotesTidied      int
}

// Runner applies the maintenance pass: tidy today's tasks, re-tidy notes on
// every project touched by today's schedule, then file and tidy the inbox.
type Runner struct {
	store      Store
	norm       *Normalizer
	log        *logrus.Logger
	today      string
	writeDelay time.Duration
	nowMillis  func() int64
}

// NewRunner creates a runner for the given date (YYYY-MM-DD). delay < 0
// falls back to DefaultWriteDelay; pass 0 to disable the pause.
func NewRunner(store Store, norm *Normalizer, log *logrus.Logger, today string, delay time.Duration) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if delay < 0 {
		delay = DefaultWriteDelay
	}
	return &Runner{
		store:      store,
		norm:       norm,
		log:        log,
		today:      today,
		writeDelay: delay,
		nowMillis:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Run executes the full pass. Store and completion failures on the
// sequential path are fatal, except per-project doc fetches during the
// project-note step which are logged and skipped.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	r.log.Info("fetching all projects and categories")
	categories, err := r.store.Categories(ctx)
	if err != nil {
		return stats, err
	}
	var projects []marvin.Item
	for _, c := range categories {
		if !c.Done {
			projects = append(projects, c)
		}
	}

	fallbackID := ""
	for _, p := range projects {
		if strings.EqualFold(strings.TrimSpace(p.Title), fallbackProjectTitle) {
			fallbackID = p.ID
			r.log.Infof("fallback project found: %q (%s)", p.Title, p.ID)
			break
		}
	}
	if fallbackID == "" {
		r.log.Warn("no 'Admin' project found, unplaceable inbox tasks will be skipped")
	}

	r.log.Infof("fetching today's tasks (%s)", r.today)
	todayItems, err := r.store.TodayItems(ctx, r.today)
	if err != nil {
		return stats, err
	}
	todayTasks := marvin.FilterTasks(todayItems)

	var incomplete []marvin.Item
	for _, t := range todayTasks {
		if !t.Done {
			incomplete = append(incomplete, t)
		}
	}
	r.log.Infof("found %d incomplete task(s) for today", len(incomplete))

	for _, task := range incomplete {
		if err := r.tidyTask(ctx, task, &stats); err != nil {
			return stats, err
		}
	}

	if err := r.tidyProjectNotes(ctx, todayTasks, &stats); err != nil {
		return stats, err
	}

	if err := r.processInbox(ctx, projects, fallbackID, &stats); err != nil {
		return stats, err
	}

	return stats, nil
}

// tidyTask fixes the title, fills a missing date and tidies the note of one
// of today's tasks, batching all changes into a single write.
func (r *Runner) tidyTask(ctx context.Context, task marvin.Item, stats *Stats) error {
	var setters []marvin.Setter
	now := r.nowMillis()

	if task.Title != "" {
		fixed, err := r.norm.FixTitle(ctx, task.Title)
		if err != nil {
			return err
		}
		if fixed != task.Title {
			r.log.Infof("spell fix | before: %q after: %q", task.Title, fixed)
			setters = append(setters,
				marvin.Setter{Key: "title", Val: fixed},
				marvin.Setter{Key: "fieldUpdates.title", Val: now},
			)
			stats.SpellFixed++
		}
	}

	setters = append(setters, r.dateSetters(task, now, stats)...)

	if strings.TrimSpace(task.Note) != "" {
		tidied, err := r.norm.TidyNote(ctx, task.Note, task.Title)
		if err != nil {
			return err
		}
		if tidied != task.Note {
			r.log.Infof("note fix | task %q", task.Title)
			setters = append(setters,
				marvin.Setter{Key: "note", Val: tidied},
				marvin.Setter{Key: "fieldUpdates.note", Val: now},
			)
			stats.NotesTidied++
		}
	}

	return r.write(ctx, task.ID, setters)
}

// tidyProjectNotes re-tidies the note on every project that has any task
// scheduled today, completed or not. Written back only when the tidied text
// differs exactly from the stored note, which is what makes re-runs no-ops.
func (r *Runner) tidyProjectNotes(ctx context.Context, todayTasks []marvin.Item, stats *Stats) error {
	seen := map[string]bool{}
	var parentIDs []string
	for _, t := range todayTasks {
		if t.HasProject() && !seen[t.ParentID] {
			seen[t.ParentID] = true
			parentIDs = append(parentIDs, t.ParentID)
		}
	}
	if len(parentIDs) == 0 {
		return nil
	}

	r.log.Infof("checking notes on %d project(s) with tasks scheduled today", len(parentIDs))
	for _, projID := range parentIDs {
		proj, err := r.store.Doc(ctx, projID)
		if err != nil {
			r.log.WithError(err).Warnf("could not fetch project %s, skipping", projID)
			continue
		}
		if strings.TrimSpace(proj.Note) == "" {
			r.log.Infof("no note on project %q", proj.Title)
			continue
		}

		tidied, err := r.norm.TidyNote(ctx, proj.Note, proj.Title)
		if err != nil {
			return err
		}
		if tidied == proj.Note {
			r.log.Infof("note ok | project %q", proj.Title)
			continue
		}

		r.log.Infof("note fix | project %q", proj.Title)
		err = r.write(ctx, projID, []marvin.Setter{
			{Key: "note", Val: tidied},
			{Key: "fieldUpdates.note", Val: r.nowMillis()},
		})
		if err != nil {
			return err
		}
		stats.NotesTidied++
	}
	return nil
}

// processInbox assigns a project, a date and a tidy note to every
// unassigned incomplete task.
func (r *Runner) processInbox(ctx context.Context, projects []marvin.Item, fallbackID string, stats *Stats) error {
	r.log.Info("fetching inbox tasks")
	children, err := r.store.Children(ctx, marvin.ParentUnassigned)
	if err != nil {
		return err
	}
	var inbox []marvin.Item
	for _, c := range children {
		if c.IsTask() && !c.Done {
			inbox = append(inbox, c)
		}
	}
	r.log.Infof("found %d inbox task(s)", len(inbox))

	for _, task := range inbox {
		var setters []marvin.Setter
		now := r.nowMillis()

		if fallbackID != "" {
			projID, projName, err := r.norm.AssignProject(ctx, task.Title, projects, fallbackID)
			if err != nil {
				return err
			}
			r.log.Infof("project | %q -> %q", task.Title, projName)
			setters = append(setters,
				marvin.Setter{Key: "parentId", Val: projID},
				marvin.Setter{Key: "fieldUpdates.parentId", Val: now},
			)
			stats.ProjectsAssigned++
		} else {
			r.log.Warnf("unsure | %q, no fallback project, skipping assignment", task.Title)
		}

		setters = append(setters, r.dateSetters(task, now, stats)...)

		if strings.TrimSpace(task.Note) != "" {
			tidied, err := r.norm.TidyNote(ctx, task.Note, task.Title)
			if err != nil {
				return err
			}
			if tidied != task.Note {
				r.log.Infof("note fix | inbox task %q", task.Title)
				setters = append(setters,
					marvin.Setter{Key: "note", Val: tidied},
					marvin.Setter{Key: "fieldUpdates.note", Val: now},
				)
				stats.NotesTidied++
			}
		}

		if err := r.write(ctx, task.ID, setters); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) dateSetters(task marvin.Item, now int64, stats *Stats) []marvin.Setter {
	if task.Day != "" {
		return nil
	}
	r.log.Infof("date fix | %q -> %s", task.Title, r.today)
	stats.DatesAssigned++
	return []marvin.Setter{
		{Key: "day", Val: r.today},
		{Key: "fieldUpdates.day", Val: now},
		{Key: "firstScheduled", Val: r.today},
	}
}

// write applies batched setters, pausing afterwards so consecutive writes
// are spaced out. A task with nothing to change writes nothing.
func (r *Runner) write(ctx context.Context, itemID string, setters []marvin.Setter) error {
	if len(setters) == 0 {
		return nil
	}
	if err := r.store.UpdateDoc(ctx, itemID, setters); err != nil {
		return fmt.Errorf("update %s: %w", itemID, err)
	}
	if r.writeDelay > 0 {
		select {
		case <-time.After(r.writeDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
