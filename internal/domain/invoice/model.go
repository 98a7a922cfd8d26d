// Package invoice implements sales invoice creation: line items priced
// against the catalog, decimal totals, and an invoice number issued through
// the gapless numbering counter.
package invoice

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
)

// DefaultPrefix is the numbering prefix for sales invoices.
const DefaultPrefix = "F"

// TaxRate is the VAT rate applied to every invoice line.
var TaxRate = decimal.NewFromFloat(0.19)

// Invoice is an issued sales invoice. Number is assigned once at creation
// and never reused; totals are computed server-side from the lines.
type Invoice struct {
	ID            id.ID           `db:"id" json:"id"`
	Number        string          `db:"number" json:"number"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	CustomerTaxID string          `db:"customer_tax_id" json:"customerTaxId"`
	IssuedBy      id.ID           `db:"issued_by" json:"issuedBy"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal `db:"tax" json:"tax"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one invoice position. UnitPrice is captured from the product at
// issue time; later price changes do not rewrite issued invoices.
type Line struct {
	InvoiceID   id.ID           `db:"invoice_id" json:"-"`
	LineNo      int             `db:"line_no" json:"lineNo"`
	ProductID   id.ID           `db:"product_id" json:"productId"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
}

// Draft is the caller's input for creating an invoice.
type Draft struct {
	CustomerName  string
	CustomerTaxID string
	Lines         []DraftLine
}

// DraftLine references a product and a quantity; price and description
// come from the catalog.
type DraftLine struct {
	ProductID id.ID
	Quantity  decimal.Decimal
}

// Validate checks a draft before any number is issued or stock touched.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return apperror.NewValidation("customer name is required")
	}
	if len(d.Lines) == 0 {
		return apperror.NewValidation("invoice requires at least one line")
	}
	for i, line := range d.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("invoice line product id is required").
				WithDetail("line_no", strconv.Itoa(i+1))
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("invoice line quantity must be positive").
				WithDetail("line_no", strconv.Itoa(i+1))
		}
	}
	return nil
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	CustomerTaxID string
	Limit         int
	Offset        int
}
