// Package report writes the run artifacts: the usage/cost summary, the CI
// step summary and the last-result JSON record.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samwarb/amazing-marvin/internal/llm"
)

// usdToGBP is only for the human-readable estimate in summaries.
const usdToGBP = 0.79

// LastResultFile is the fixed-name record written in CI runs.
const LastResultFile = "last_result.json"

// LastResult is the persisted record of the most recent search.
type LastResult struct {
	RunID     string   `json:"run_id"`
	Query     string   `json:"query"`
	Answer    string   `json:"answer"`
	Timestamp string   `json:"timestamp"`
	Projects  []string `json:"projects"`
}

// PrintUsage writes the usage and cost summary for one run.
func PrintUsage(w io.Writer, totals llm.Totals, pricing llm.Pricing) {
	cost := totals.Cost(pricing)
	fmt.Fprintf(w, "\nOpenAI Usage:\n")
	fmt.Fprintf(w, "  API calls:      %d\n", totals.Calls)
	fmt.Fprintf(w, "  Input tokens:   %d\n", totals.PromptTokens)
	fmt.Fprintf(w, "  Output tokens:  %d\n", totals.CompletionTokens)
	fmt.Fprintf(w, "  Estimated cost: $%.6f USD (~£%.6f)\n", cost, cost*usdToGBP)
}

// WriteLastResult writes the search record to LastResultFile in dir.
func WriteLastResult(dir, query, answer string, projects []string) error {
	record := LastResult{
		RunID:     uuid.NewString(),
		Query:     query,
		Answer:    answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Projects:  projects,
	}
	if record.Projects == nil {
		record.Projects = []string{}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal last result: %w", err)
	}

	path := LastResultFile
	if dir != "" {
		path = filepath.Join(dir, LastResultFile)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write last result: %w", err)
	}
	return nil
}

// AppendStepSummary appends a human-readable run summary to the file named
// by the GITHUB_STEP_SUMMARY environment variable. Does nothing when unset.
func AppendStepSummary(query string, projects []string, answer string, totals llm.Totals, pricing llm.Pricing) error {
	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return nil
	}

	names := "None"
	if len(projects) > 0 {
		names = strings.Join(projects, ", ")
	}
	cost := totals.Cost(pricing)

	lines := []string{
		"## Marvin Search Result",
		"",
		fmt.Sprintf("**Query:** %s", query),
		"",
		fmt.Sprintf("**Projects searched:** %s", names),
		"",
		"### Answer",
		"",
		answer,
		"",
		"---",
		fmt.Sprintf("*OpenAI calls: %d | Tokens: %d in / %d out | Cost: $%.6f USD (~£%.6f)*",
			totals.Calls, totals.PromptTokens, totals.CompletionTokens, cost, cost*usdToGBP),
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open step summary: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("append step summary: %w", err)
	}
	return nil
}
