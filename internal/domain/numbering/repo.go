package numbering

import (
	"context"
)

// Store persists numbering counters. Every mutation must be a single
// atomic operation against the counter row; increments and decrements are
// relative deltas, never absolute sets, so concurrent compensations each
// undo their own speculative increment.
type Store interface {
	// IncrementAndGet atomically adds 1 to the counter for prefix and
	// returns the post-increment state in the same indivisible step.
	// Returns a not-found error when no counter exists for the prefix;
	// it must NOT create one.
	IncrementAndGet(ctx context.Context, prefix string) (CounterState, error)

	// Decrement atomically subtracts 1 from the counter for prefix.
	// Used as the compensating action after an overshoot.
	Decrement(ctx context.Context, prefix string) error

	// Replace installs a new authorized range, creating the counter if
	// absent (upsert). CurrentNumber is set to start, RangeEnd to end.
	Replace(ctx context.Context, prefix string, start, end int64, authRef string) (CounterState, error)

	// Get returns the current counter state without mutating it.
	Get(ctx context.Context, prefix string) (CounterState, error)
}
