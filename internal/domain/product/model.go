// Package product provides the product catalog: models, persistence
// contract and CRUD service. Price and quantity mutations do not go
// through this package directly; they are gated by the approval workflow.
package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
)

// Product is a catalog item.
type Product struct {
	ID          id.ID  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Category    string `db:"category" json:"category,omitempty"`

	// Sensitive fields: changed only directly when no delta is detected,
	// otherwise through an approved change request.
	Price    decimal.Decimal `db:"price" json:"price"`
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	DeletionMark bool      `db:"deletion_mark" json:"deletionMark"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks invariants before persisting.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("product price cannot be negative")
	}
	if p.Quantity.IsNegative() {
		return apperror.NewValidation("product quantity cannot be negative")
	}
	return nil
}

// Patch is a partial update with already-normalized values. Nil means the
// field was absent from the request and must be treated as unchanged.
type Patch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *decimal.Decimal
	Quantity    *decimal.Decimal
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.Price == nil && p.Quantity == nil
}

// ListFilter narrows and pages product listings.
type ListFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListResult is a page of products.
type ListResult struct {
	Items  []*Product `json:"items"`
	Total  int64      `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}
