package marvin

// Database kind constants as stored in the "db" field of every Marvin record.
const (
	DBTasks      = "Tasks"
	DBCategories = "Categories"
)

// Parent sentinels for tasks that don't belong to a real project.
const (
	ParentUnassigned = "unassigned"
	ParentRoot       = "root"
)

// Item is a Marvin document: a task, project or category. Marvin stores all
// of these in one document shape distinguished by the "db" field, so the
// client does too.
type Item struct {
	ID             string `json:"_id"`
	DB             string `json:"db,omitempty"`
	Title          string `json:"title,omitempty"`
	Done           bool   `json:"done,omitempty"`
	Day            string `json:"day,omitempty"`
	ParentID       string `json:"parentId,omitempty"`
	Note           string `json:"note,omitempty"`
	FirstScheduled string `json:"firstScheduled,omitempty"`
	UpdatedAt      int64  `json:"updatedAt,omitempty"`
}

// IsTask reports whether the item is a task record.
func (i Item) IsTask() bool {
	return i.DB == DBTasks
}

// HasProject reports whether the item is parented to a real project rather
// than one of the inbox/root sentinels.
func (i Item) HasProject() bool {
	return i.ParentID != "" && i.ParentID != ParentUnassigned && i.ParentID != ParentRoot
}

// Setter is a single field update for the /doc/update endpoint.
type Setter struct {
	Key string `json:"key"`
	Val any    `json:"val"`
}

// FilterTasks returns only the task records from items.
func FilterTasks(items []Item) []Item {
	var tasks []Item
	for _, it := range items {
		if it.IsTask() {
			tasks = append(tasks, it)
		}
	}
	return tasks
}
