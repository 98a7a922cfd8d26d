package dto

import (
	"time"

	"gaiafact/internal/core/types"
	"gaiafact/internal/domain/product"
)

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Code        string        `json:"code"`
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Price       types.Numeric `json:"price"`
	Quantity    types.Numeric `json:"quantity"`
}

// ToProduct maps the request onto a new product.
func (r CreateProductRequest) ToProduct() *product.Product {
	p := &product.Product{
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Price.Valid {
		p.Price = r.Price.Decimal
	}
	if r.Quantity.Valid {
		p.Quantity = r.Quantity.Decimal
	}
	return p
}

// UpdateProductRequest is a partial update. Absent fields stay unchanged;
// price and quantity accept numbers or numeric strings.
type UpdateProductRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Category    *string        `json:"category"`
	Price       *types.Numeric `json:"price"`
	Quantity    *types.Numeric `json:"quantity"`
}

// ToPatch normalizes the request into a product patch.
func (r UpdateProductRequest) ToPatch() product.Patch {
	return product.Patch{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price.Ptr(),
		Quantity:    r.Quantity.Ptr(),
	}
}

// ProductResponse contains product fields.
type ProductResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       string    `json:"price"`
	Quantity    string    `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromProduct creates ProductResponse from a product.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.String(),
		Quantity:    p.Quantity.String(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromProducts maps a product slice.
func FromProducts(items []*product.Product) []ProductResponse {
	out := make([]ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}
