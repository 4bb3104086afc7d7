package jobs

import "sync"

// DefaultHistorySize is the number of outcomes kept by NewHistory(0).
const DefaultHistorySize = 100

// History keeps the most recent outcomes in memory.
type History struct {
	mu      sync.RWMutex
	entries []*Outcome
	size    int
	last    map[string]*Outcome
}

// NewHistory creates a history holding up to size outcomes.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		entries: make([]*Outcome, 0, size),
		size:    size,
		last:    make(map[string]*Outcome),
	}
}

// Add records an outcome, evicting the oldest when full. Outcomes for
// unknown jobs stay in the bounded ring but are not indexed by name.
func (h *History) Add(outcome *Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.size {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.size-1]
	}
	h.entries = append(h.entries, outcome)
	if outcome.ErrorKind != KindUnknownJob {
		h.last[outcome.Job] = outcome
	}
}

// Last returns the most recent outcome of a job, or nil.
func (h *History) Last(job string) *Outcome {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.last[job]
}

// Recent returns up to n outcomes, newest first.
func (h *History) Recent(n int) []*Outcome {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	recent := make([]*Outcome, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		recent = append(recent, h.entries[i])
	}
	return recent
}
