package product

import (
	"context"

	"github.com/shopspring/decimal"

	"gaiafact/internal/core/id"
)

// Repository defines the interface for product persistence.
type Repository interface {
	// Get retrieves a live (not deletion-marked) product.
	Get(ctx context.Context, productID id.ID) (*Product, error)

	// List retrieves live products matching the filter.
	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *Product) error

	// FindByCode retrieves a product by its code.
	FindByCode(ctx context.Context, code string) (*Product, error)

	// ApplyPatch applies the given fields and returns the updated product.
	ApplyPatch(ctx context.Context, productID id.ID, patch Patch) (*Product, error)

	// ApplySensitive sets price and/or quantity. Used only by the approval
	// workflow when a change request is approved.
	ApplySensitive(ctx context.Context, productID id.ID, price, quantity *decimal.Decimal) error

	// DecrementStock atomically subtracts qty from the product's quantity,
	// failing with an insufficient-stock error when the balance would go
	// negative.
	DecrementStock(ctx context.Context, productID id.ID, qty decimal.Decimal) error

	// MarkDeleted sets the deletion mark. Used only by the approval
	// workflow when a deletion request is approved.
	MarkDeleted(ctx context.Context, productID id.ID) error
}
