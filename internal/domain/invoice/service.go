package invoice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gaiafact/internal/core/id"
	"gaiafact/internal/core/tx"
	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/domain/product"
	"gaiafact/pkg/logger"
)

// Catalog is the slice of the product repository invoicing needs: price
// lookups and stock decrements.
type Catalog interface {
	Get(ctx context.Context, productID id.ID) (*product.Product, error)
	DecrementStock(ctx context.Context, productID id.ID, qty decimal.Decimal) error
}

// Service creates and reads invoices.
type Service struct {
	repo      Repository
	products  Catalog
	numbering *numbering.Service
	txManager tx.Manager
}

// NewService creates a new invoice service.
func NewService(repo Repository, products Catalog, num *numbering.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		numbering: num,
		txManager: txManager,
	}
}

// Create validates the draft, prices every line from the catalog, issues
// the invoice number and persists everything.
//
// The number is issued before the write transaction. A failed write
// therefore leaves a gap in the issued sequence, which the counter design
// accepts: uniqueness and monotonicity are the guarantees, and the counter
// already moved past the number so it can never be reissued. Numbering
// errors (missing configuration, exhausted range) propagate to the caller
// unchanged.
func (s *Service) Create(ctx context.Context, draft Draft, issuedBy id.ID) (*Invoice, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		ID:            id.New(),
		CustomerName:  draft.CustomerName,
		CustomerTaxID: draft.CustomerTaxID,
		IssuedBy:      issuedBy,
		CreatedAt:     time.Now().UTC(),
	}

	for i, dl := range draft.Lines {
		p, err := s.products.Get(ctx, dl.ProductID)
		if err != nil {
			return nil, err
		}
		amount := p.Price.Mul(dl.Quantity)
		inv.Lines = append(inv.Lines, Line{
			InvoiceID:   inv.ID,
			LineNo:      i + 1,
			ProductID:   p.ID,
			Description: p.Name,
			Quantity:    dl.Quantity,
			UnitPrice:   p.Price,
			Amount:      amount,
		})
		inv.Subtotal = inv.Subtotal.Add(amount)
	}
	inv.Tax = inv.Subtotal.Mul(TaxRate).Round(2)
	inv.Total = inv.Subtotal.Add(inv.Tax)

	number, err := s.numbering.IssueNext(ctx, DefaultPrefix)
	if err != nil {
		return nil, err
	}
	inv.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, line := range inv.Lines {
			if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "invoice created",
		"invoice_id", inv.ID,
		"number", inv.Number,
		"total", inv.Total,
		"lines", len(inv.Lines),
	)
	return inv, nil
}

// GetByID retrieves an invoice with its lines.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.Get(ctx, invoiceID)
}

// List retrieves invoice headers.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
