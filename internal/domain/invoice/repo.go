package invoice

import (
	"context"

	"gaiafact/internal/core/id"
)

// Repository persists invoices and their lines.
type Repository interface {
	// Create inserts the invoice header and all lines.
	Create(ctx context.Context, inv *Invoice) error

	// Get loads an invoice with its lines, or NotFound.
	Get(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// List returns invoice headers matching filter, newest first, without
	// lines.
	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)
}
