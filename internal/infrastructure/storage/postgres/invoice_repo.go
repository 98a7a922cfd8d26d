package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/invoice"
)

const (
	invoiceTable     = "invoices"
	invoiceLineTable = "invoice_lines"
)

var invoiceCols = []string{
	"id", "number", "customer_name", "customer_tax_id", "issued_by",
	"subtotal", "tax", "total", "created_at",
}

var invoiceLineCols = []string{
	"invoice_id", "line_no", "product_id", "description",
	"quantity", "unit_price", "amount",
}

// Compile-time check.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	txm *TxManager
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *TxManager) *InvoiceRepo {
	return &InvoiceRepo{txm: txm}
}

func (r *InvoiceRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the invoice header and all lines. Callers run this
// inside a transaction together with the stock decrements.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	headerQ := r.builder().
		Insert(invoiceTable).
		Columns(invoiceCols...).
		Values(inv.ID, inv.Number, inv.CustomerName, inv.CustomerTaxID, inv.IssuedBy,
			inv.Subtotal, inv.Tax, inv.Total, inv.CreatedAt)

	sql, args, err := headerQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert invoice: %w", err))
	}

	linesQ := r.builder().
		Insert(invoiceLineTable).
		Columns(invoiceLineCols...)
	for _, line := range inv.Lines {
		linesQ = linesQ.Values(inv.ID, line.LineNo, line.ProductID, line.Description,
			line.Quantity, line.UnitPrice, line.Amount)
	}

	sql, args, err = linesQ.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert invoice lines: %w", err))
	}
	return nil
}

// Get loads an invoice with its lines.
func (r *InvoiceRepo) Get(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.builder().
		Select(invoiceCols...).
		From(invoiceTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)

	var inv invoice.Invoice
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get invoice: %w", err))
	}

	linesQ := r.builder().
		Select(invoiceLineCols...).
		From(invoiceLineTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no ASC")

	sql, args, err = linesQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &inv.Lines, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("get invoice lines: %w", err))
	}
	return &inv, nil
}

// List returns invoice headers matching filter, newest first.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	q := r.builder().
		Select(invoiceCols...).
		From(invoiceTable).
		OrderBy("created_at DESC")

	if filter.CustomerTaxID != "" {
		q = q.Where(squirrel.Eq{"customer_tax_id": filter.CustomerTaxID})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.Invoice
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list invoices: %w", err))
	}
	return items, nil
}
