package numbering

import (
	"context"

	"gaiafact/internal/core/apperror"
	"gaiafact/pkg/logger"
)

// Service hands out invoice numbers that are unique, strictly increasing
// and never exceed the authorized range, even under concurrent callers.
//
// The implementation increments first and validates after. A
// read-check-then-write order would let two concurrent callers both read
// currentNumber == rangeEnd-1 and both issue the boundary number; with
// increment-first, at most one caller ever observes a given post-increment
// value, and only overshooting callers pay a compensating decrement.
type Service struct {
	store Store
}

// NewService creates a numbering service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// IssueNext issues the next number for prefix.
//
// Fails with NUMBERING_CONFIG_MISSING when no counter exists for the
// prefix, and with NUMBERING_RANGE_EXCEEDED (carrying the last valid
// formatted number) when the range is exhausted. Range exhaustion is not
// retryable; it requires an administrative range reload.
func (s *Service) IssueNext(ctx context.Context, prefix string) (string, error) {
	state, err := s.store.IncrementAndGet(ctx, prefix)
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewNumberingConfigMissing(prefix)
		}
		return "", err
	}

	if state.CurrentNumber > state.RangeEnd {
		// Undo this caller's own speculative increment. Other overshoots
		// in flight each undo theirs; the deltas are independent.
		if derr := s.store.Decrement(ctx, prefix); derr != nil {
			logger.Error(ctx, "numbering compensation failed",
				"prefix", prefix,
				"error", derr,
			)
		}
		return "", apperror.NewNumberingRangeExceeded(prefix, Format(prefix, state.RangeEnd))
	}

	number := Format(prefix, state.CurrentNumber)
	logger.Debug(ctx, "invoice number issued",
		"prefix", prefix,
		"number", number,
	)
	return number, nil
}

// LoadNewRange installs a new authorized numbering range for prefix,
// resetting the counter to start. Creates the counter if absent.
func (s *Service) LoadNewRange(ctx context.Context, prefix string, start, end int64, authRef string) (CounterState, error) {
	if start >= end {
		return CounterState{}, apperror.NewInvalidRange(start, end)
	}

	state, err := s.store.Replace(ctx, prefix, start, end, authRef)
	if err != nil {
		return CounterState{}, err
	}

	logger.Info(ctx, "numbering range loaded",
		"prefix", prefix,
		"start", start,
		"end", end,
		"authorization_ref", authRef,
	)
	return state, nil
}

// Peek returns the counter state for prefix without issuing a number.
func (s *Service) Peek(ctx context.Context, prefix string) (CounterState, error) {
	return s.store.Get(ctx, prefix)
}
