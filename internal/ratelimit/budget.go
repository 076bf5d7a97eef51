package ratelimit

import "sync"

// Budget caps how many remote article pages may be fetched in one run for
// og:image lookups. It is handed to the image resolver explicitly instead of
// living in a package variable, so the resolver stays testable. The mutex
// keeps it correct if feed processing ever goes concurrent.
type Budget struct {
	mu   sync.Mutex
	used int
	max  int
}

// NewBudget returns a budget allowing max attempts. max <= 0 means no
// attempts at all: this is a safety cap on network fetches, so zero must
// fail closed rather than mean unlimited.
func NewBudget(max int) *Budget {
	return &Budget{max: max}
}

// Take consumes one attempt and reports whether it was within budget.
func (b *Budget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

// Used returns how many attempts have been consumed.
func (b *Budget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Remaining returns how many attempts are left.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	left := b.max - b.used
	if left < 0 {
		left = 0
	}
	return left
}
