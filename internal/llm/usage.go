package llm

import "sync"

// Usage is the token cost of a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Pricing is the cost per 1M tokens in USD.
type Pricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// DefaultPricing matches gpt-4.1-nano.
func DefaultPricing() Pricing {
	return Pricing{InputPer1M: 0.100, OutputPer1M: 0.400}
}

// Tracker accumulates usage across a run. It is passed explicitly through
// the call chain rather than living in a package global, and is
// mutex-guarded so overlapping callers stay safe.
type Tracker struct {
	mu               sync.Mutex
	calls            int
	promptTokens     int
	completionTokens int
}

// Totals is a point-in-time snapshot of a Tracker.
type Totals struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// NewTracker creates an empty usage tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Add records the usage of one completed call.
func (t *Tracker) Add(u Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.promptTokens += u.PromptTokens
	t.completionTokens += u.CompletionTokens
}

// Snapshot returns the accumulated totals.
func (t *Tracker) Snapshot() Totals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Totals{
		Calls:            t.calls,
		PromptTokens:     t.promptTokens,
		CompletionTokens: t.completionTokens,
	}
}

// Cost estimates the USD cost of the accumulated usage.
func (t Totals) Cost(p Pricing) float64 {
	input := float64(t.PromptTokens) / 1_000_000 * p.InputPer1M
	output := float64(t.CompletionTokens) / 1_000_000 * p.OutputPer1M
	return input + output
}
