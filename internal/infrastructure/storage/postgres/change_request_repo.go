package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/approval"
)

const changeRequestTable = "change_requests"

var changeRequestCols = []string{
	"id", "kind", "product_id", "requested_by", "approved_by",
	"price_old", "price_new", "quantity_old", "quantity_new",
	"status", "requested_at", "resolved_at",
}

// Compile-time check.
var _ approval.Repository = (*ChangeRequestRepo)(nil)

// ChangeRequestRepo implements approval.Repository.
type ChangeRequestRepo struct {
	txm *TxManager
}

// NewChangeRequestRepo creates a new change request repository.
func NewChangeRequestRepo(txm *TxManager) *ChangeRequestRepo {
	return &ChangeRequestRepo{txm: txm}
}

func (r *ChangeRequestRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new pending change request.
func (r *ChangeRequestRepo) Create(ctx context.Context, req *approval.ChangeRequest) error {
	q := r.builder().
		Insert(changeRequestTable).
		Columns(changeRequestCols...).
		Values(req.ID, req.Kind, req.ProductID, req.RequestedBy, req.ApprovedBy,
			req.PriceOld, req.PriceNew, req.QuantityOld, req.QuantityNew,
			req.Status, req.RequestedAt, req.ResolvedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert change request: %w", err))
	}
	return nil
}

// Get retrieves a change request.
func (r *ChangeRequestRepo) Get(ctx context.Context, requestID id.ID) (*approval.ChangeRequest, error) {
	q := r.builder().
		Select(changeRequestCols...).
		From(changeRequestTable).
		Where(squirrel.Eq{"id": requestID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var req approval.ChangeRequest
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &req, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("change request", requestID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get change request: %w", err))
	}
	return &req, nil
}

// Resolve moves a PENDING request to a terminal status. The status
// precondition sits in the WHERE clause, so the whole check-and-set is one
// atomic statement: of two concurrent resolvers exactly one matches the
// row, the other falls through to the already-resolved error.
func (r *ChangeRequestRepo) Resolve(ctx context.Context, requestID, resolvedBy id.ID, status approval.Status, resolvedAt time.Time) (*approval.ChangeRequest, error) {
	q := r.builder().
		Update(changeRequestTable).
		Set("status", status).
		Set("approved_by", resolvedBy).
		Set("resolved_at", resolvedAt).
		Where(squirrel.Eq{"id": requestID}).
		Where(squirrel.Eq{"status": approval.StatusPending}).
		Suffix("RETURNING " + joinCols(changeRequestCols))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var req approval.ChangeRequest
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &req, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			// Either the request does not exist or it left PENDING first.
			if _, getErr := r.Get(ctx, requestID); getErr != nil {
				return nil, getErr
			}
			return nil, apperror.NewAlreadyResolved(requestID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("resolve change request: %w", err))
	}
	return &req, nil
}

// List retrieves change requests, optionally filtered by status, newest
// first.
func (r *ChangeRequestRepo) List(ctx context.Context, status *approval.Status, limit, offset int) ([]*approval.ChangeRequest, error) {
	q := r.builder().
		Select(changeRequestCols...).
		From(changeRequestTable).
		OrderBy("requested_at DESC")

	if status != nil {
		q = q.Where(squirrel.Eq{"status": *status})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*approval.ChangeRequest
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list change requests: %w", err))
	}
	return items, nil
}
