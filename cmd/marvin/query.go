package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// resolveQuery sources the search query in priority order: the SEARCH_QUERY
// environment variable (set by the CI workflow input), then command-line
// arguments joined by spaces, then an interactive prompt. Returns "" when
// nothing resolves.
func resolveQuery(args []string, in io.Reader, out io.Writer) string {
	if q := strings.TrimSpace(os.Getenv("SEARCH_QUERY")); q != "" {
		return q
	}
	if len(args) > 0 {
		if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
			return q
		}
	}

	fmt.Fprint(out, "What do you want to know? ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
