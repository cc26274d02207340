package search

// TaskEntry is one child task inside a content block.
type TaskEntry struct {
	Title string
	Done  bool
	Note  string
}

// ContentBlock is the gathered content for one relevant project: its note
// and its child tasks. Built fresh per query, never cached.
type ContentBlock struct {
	ID    string
	Title string
	Note  string
	Tasks []TaskEntry
}

// Result is the outcome of one search run.
type Result struct {
	Query    string
	Answer   string
	Projects []string // titles of the projects that were searched, in relevance order
}
