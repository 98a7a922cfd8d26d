package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/domain/numbering"
)

// Compile-time check.
var _ numbering.Store = (*CounterRepo)(nil)

// CounterRepo persists numbering counters. Raw SQL on purpose: every
// mutation must be a single atomic single-row statement, and the relative
// delta form (current_number + 1 / - 1) is the whole point.
type CounterRepo struct {
	txm *TxManager
}

// NewCounterRepo creates a new counter repository.
func NewCounterRepo(txm *TxManager) *CounterRepo {
	return &CounterRepo{txm: txm}
}

// IncrementAndGet atomically bumps the counter and returns the
// post-increment state. Never creates a counter.
func (r *CounterRepo) IncrementAndGet(ctx context.Context, prefix string) (numbering.CounterState, error) {
	const q = `
		UPDATE numbering_counters
		SET current_number = current_number + 1
		WHERE prefix = $1
		RETURNING prefix, current_number, range_end, authorization_ref, reset_at`

	var state numbering.CounterState
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, prefix).Scan(
		&state.Prefix, &state.CurrentNumber, &state.RangeEnd,
		&state.AuthorizationRef, &state.ResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return numbering.CounterState{}, apperror.NewNotFound("numbering counter", prefix)
		}
		return numbering.CounterState{}, apperror.NewDatabase(fmt.Errorf("increment counter %s: %w", prefix, err))
	}
	return state, nil
}

// Decrement atomically undoes one increment.
func (r *CounterRepo) Decrement(ctx context.Context, prefix string) error {
	const q = `
		UPDATE numbering_counters
		SET current_number = current_number - 1
		WHERE prefix = $1`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, q, prefix)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("decrement counter %s: %w", prefix, err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("numbering counter", prefix)
	}
	return nil
}

// Replace installs a new authorized range, creating the counter if absent.
func (r *CounterRepo) Replace(ctx context.Context, prefix string, start, end int64, authRef string) (numbering.CounterState, error) {
	const q = `
		INSERT INTO numbering_counters (prefix, current_number, range_end, authorization_ref, reset_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (prefix) DO UPDATE SET
			current_number = EXCLUDED.current_number,
			range_end = EXCLUDED.range_end,
			authorization_ref = EXCLUDED.authorization_ref,
			reset_at = EXCLUDED.reset_at
		RETURNING prefix, current_number, range_end, authorization_ref, reset_at`

	var state numbering.CounterState
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, prefix, start, end, authRef).Scan(
		&state.Prefix, &state.CurrentNumber, &state.RangeEnd,
		&state.AuthorizationRef, &state.ResetAt,
	)
	if err != nil {
		return numbering.CounterState{}, apperror.NewDatabase(fmt.Errorf("replace counter %s: %w", prefix, err))
	}
	return state, nil
}

// Get returns the counter state without mutating it.
func (r *CounterRepo) Get(ctx context.Context, prefix string) (numbering.CounterState, error) {
	const q = `
		SELECT prefix, current_number, range_end, authorization_ref, reset_at
		FROM numbering_counters
		WHERE prefix = $1`

	var state numbering.CounterState
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, prefix).Scan(
		&state.Prefix, &state.CurrentNumber, &state.RangeEnd,
		&state.AuthorizationRef, &state.ResetAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return numbering.CounterState{}, apperror.NewNotFound("numbering counter", prefix)
		}
		return numbering.CounterState{}, apperror.NewDatabase(fmt.Errorf("get counter %s: %w", prefix, err))
	}
	return state, nil
}
