package tidy

import "strings"

// MediaPolicy decides when a note is purely a media reference and should
// pass through the tidy step untouched. The thresholds are business rules
// an operator may want to tune, so they live here rather than as constants
// buried in the transform.
type MediaPolicy struct {
	// ImageSuffixes marks notes that are just an image URL or filename.
	ImageSuffixes []string

	// StubKeyword and StubMaxWords together mark very short stub notes
	// like "screenshot of error".
	StubKeyword  string
	StubMaxWords int
}

// DefaultMediaPolicy returns the stock thresholds.
func DefaultMediaPolicy() MediaPolicy {
	return MediaPolicy{
		ImageSuffixes: []string{".png", ".jpg", ".jpeg", ".gif", ".webp"},
		StubKeyword:   "screenshot",
		StubMaxWords:  5,
	}
}

// IsMediaOnly reports whether the note is basically just an image or
// screenshot reference: a single markdown image line, a bare image URL, or
// a short stub mentioning the stub keyword.
func (p MediaPolicy) IsMediaOnly(note string) bool {
	stripped := strings.TrimSpace(note)
	if stripped == "" {
		return false
	}

	if strings.HasPrefix(stripped, "![") && strings.Contains(stripped, "](") && strings.HasSuffix(stripped, ")") {
		return true
	}

	lower := strings.ToLower(stripped)
	for _, suffix := range p.ImageSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	if p.StubKeyword != "" && strings.Contains(lower, p.StubKeyword) &&
		len(strings.Fields(lower)) <= p.StubMaxWords {
		return true
	}

	return false
}
