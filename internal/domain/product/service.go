package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/pkg/logger"
)

// Service provides catalog operations that need no second reviewer:
// creation, lookup and listing. Updates and deletions run through the
// approval workflow instead.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new product. A missing code is generated from the
// product ID; an explicit code must be unique.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	if p.Code == "" {
		p.Code = generateCode(p.ID)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt

	if err := p.Validate(); err != nil {
		return err
	}

	if existing, err := s.repo.FindByCode(ctx, p.Code); err == nil && existing.ID != p.ID {
		return apperror.NewDuplicate("product", "code", p.Code)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "product created",
		"id", p.ID,
		"code", p.Code,
		"name", p.Name,
	)
	return nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.Get(ctx, productID)
}

// List retrieves products matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func generateCode(productID id.ID) string {
	return fmt.Sprintf("P-%s", strings.ToUpper(productID.String()[:8]))
}
