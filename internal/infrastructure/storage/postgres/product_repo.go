package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/product"
)

const productTable = "products"

var productCols = []string{
	"id", "code", "name", "description", "category",
	"price", "quantity", "deletion_mark", "created_at", "updated_at",
}

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm *TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

func (r *ProductRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(productCols...).From(productTable)
}

// Get retrieves a live product by ID.
func (r *ProductRepo) Get(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get product: %w", err))
	}
	return &p, nil
}

// FindByCode retrieves a live product by code.
func (r *ProductRepo) FindByCode(ctx context.Context, code string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("find product by code: %w", err))
	}
	return &p, nil
}

// List retrieves live products matching the filter, with a total count.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (product.ListResult, error) {
	result := product.ListResult{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	q = q.OrderBy("name ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	// Read-only transaction so the page and the total count come from the
	// same snapshot.
	err = r.txm.ReadOnly(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)
		if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
			return apperror.NewDatabase(fmt.Errorf("count products: %w", err))
		}

		var items []*product.Product
		if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
			return apperror.NewDatabase(fmt.Errorf("list products: %w", err))
		}
		result.Items = items
		return nil
	})
	return result, err
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder().
		Insert(productTable).
		Columns(productCols...).
		Values(p.ID, p.Code, p.Name, p.Description, p.Category,
			p.Price, p.Quantity, p.DeletionMark, p.CreatedAt, p.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert product: %w", err))
	}
	return nil
}

// ApplyPatch updates the given fields and returns the updated product.
func (r *ProductRepo) ApplyPatch(ctx context.Context, productID id.ID, patch product.Patch) (*product.Product, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, productID)
	}

	q := r.builder().
		Update(productTable).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Suffix("RETURNING " + joinCols(productCols))

	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		q = q.Set("description", *patch.Description)
	}
	if patch.Category != nil {
		q = q.Set("category", *patch.Category)
	}
	if patch.Price != nil {
		q = q.Set("price", *patch.Price)
	}
	if patch.Quantity != nil {
		q = q.Set("quantity", *patch.Quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("update product: %w", err))
	}
	return &p, nil
}

// ApplySensitive sets price and/or quantity from an approved request.
func (r *ProductRepo) ApplySensitive(ctx context.Context, productID id.ID, price, quantity *decimal.Decimal) error {
	if price == nil && quantity == nil {
		return nil
	}

	q := r.builder().
		Update(productTable).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false})

	if price != nil {
		q = q.Set("price", *price)
	}
	if quantity != nil {
		q = q.Set("quantity", *quantity)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("apply approved change: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// DecrementStock atomically subtracts qty, refusing to go negative. The
// guard lives in the WHERE clause so concurrent decrements serialize on
// the row instead of racing a read-then-write.
func (r *ProductRepo) DecrementStock(ctx context.Context, productID id.ID, qty decimal.Decimal) error {
	const q = `
		UPDATE products
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND deletion_mark = false AND quantity >= $2`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, q, productID, qty)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("decrement stock: %w", err))
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing product from a stock shortage.
		var available decimal.Decimal
		err := r.txm.GetQuerier(ctx).QueryRow(ctx,
			`SELECT quantity FROM products WHERE id = $1 AND deletion_mark = false`,
			productID,
		).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("product", productID.String())
		}
		if err != nil {
			return apperror.NewDatabase(fmt.Errorf("check stock: %w", err))
		}
		return apperror.NewInsufficientStock(productID.String(), qty.String(), available.String())
	}
	return nil
}

// MarkDeleted sets the deletion mark from an approved deletion request.
func (r *ProductRepo) MarkDeleted(ctx context.Context, productID id.ID) error {
	q := r.builder().
		Update(productTable).
		Set("deletion_mark", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("mark product deleted: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}
