package dto

import (
	"time"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/core/types"
	"gaiafact/internal/domain/invoice"
)

// CreateInvoiceRequest for creating invoices.
type CreateInvoiceRequest struct {
	CustomerName  string                     `json:"customerName" binding:"required"`
	CustomerTaxID string                     `json:"customerTaxId"`
	Lines         []CreateInvoiceLineRequest `json:"lines" binding:"required"`
}

// CreateInvoiceLineRequest is one requested line.
type CreateInvoiceLineRequest struct {
	ProductID string        `json:"productId" binding:"required"`
	Quantity  types.Numeric `json:"quantity"`
}

// ToDraft maps the request into an invoice draft.
func (r CreateInvoiceRequest) ToDraft() (invoice.Draft, error) {
	draft := invoice.Draft{
		CustomerName:  r.CustomerName,
		CustomerTaxID: r.CustomerTaxID,
	}
	for _, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return invoice.Draft{}, apperror.NewValidation("invalid product id").
				WithDetail("product_id", line.ProductID)
		}
		draft.Lines = append(draft.Lines, invoice.DraftLine{
			ProductID: productID,
			Quantity:  line.Quantity.Decimal,
		})
	}
	return draft, nil
}

// InvoiceLineResponse contains invoice line fields.
type InvoiceLineResponse struct {
	LineNo      int    `json:"lineNo"`
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Amount      string `json:"amount"`
}

// InvoiceResponse contains invoice fields.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	CustomerName  string                `json:"customerName"`
	CustomerTaxID string                `json:"customerTaxId,omitempty"`
	IssuedBy      string                `json:"issuedBy"`
	Subtotal      string                `json:"subtotal"`
	Tax           string                `json:"tax"`
	Total         string                `json:"total"`
	CreatedAt     time.Time             `json:"createdAt"`
	Lines         []InvoiceLineResponse `json:"lines,omitempty"`
}

// FromInvoice maps an invoice with its lines.
func FromInvoice(inv *invoice.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		Number:        inv.Number,
		CustomerName:  inv.CustomerName,
		CustomerTaxID: inv.CustomerTaxID,
		IssuedBy:      inv.IssuedBy.String(),
		Subtotal:      inv.Subtotal.String(),
		Tax:           inv.Tax.String(),
		Total:         inv.Total.String(),
		CreatedAt:     inv.CreatedAt,
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			LineNo:      line.LineNo,
			ProductID:   line.ProductID.String(),
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			UnitPrice:   line.UnitPrice.String(),
			Amount:      line.Amount.String(),
		})
	}
	return resp
}

// FromInvoices maps invoice headers.
func FromInvoices(items []*invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(items))
	for i, inv := range items {
		out[i] = FromInvoice(inv)
	}
	return out
}
