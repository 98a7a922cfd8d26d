package approval

import (
	"context"
	"fmt"
	"time"

	appctx "gaiafact/internal/core/context"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/audit"
	"gaiafact/internal/domain/notify"
	"gaiafact/internal/domain/product"
	"gaiafact/pkg/logger"
)

// Directory resolves notification recipients. Implemented by the auth
// service: reviewers are verified, active users holding an elevated role.
type Directory interface {
	ReviewerEmails(ctx context.Context) ([]string, error)
	UserEmail(ctx context.Context, userID id.ID) (string, error)
}

// Service runs the change approval workflow.
type Service struct {
	products  product.Repository
	requests  Repository
	auditSink audit.Sink
	notifier  notify.Notifier
	directory Directory
}

// NewService creates a new approval service.
func NewService(
	products product.Repository,
	requests Repository,
	auditSink audit.Sink,
	notifier notify.Notifier,
	directory Directory,
) *Service {
	return &Service{
		products:  products,
		requests:  requests,
		auditSink: auditSink,
		notifier:  notifier,
		directory: directory,
	}
}

// ProposeUpdate applies a product patch, or defers it behind a change
// request when price or quantity would change.
//
// Comparison is decimal equality on normalized values: an omitted field is
// unchanged, and "150" vs stored 150 is no change. Non-sensitive fields
// (name, description, category) never require approval; when no sensitive
// delta exists the whole patch is applied directly. When a delta exists
// the product is left untouched until a reviewer approves.
func (s *Service) ProposeUpdate(ctx context.Context, productID, requestedBy id.ID, patch product.Patch) (Outcome, error) {
	current, err := s.products.Get(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}

	priceChanged := patch.Price != nil && !patch.Price.Equal(current.Price)
	quantityChanged := patch.Quantity != nil && !patch.Quantity.Equal(current.Quantity)

	if !priceChanged && !quantityChanged {
		updated, err := s.products.ApplyPatch(ctx, productID, patch)
		if err != nil {
			return Outcome{}, err
		}
		logger.Info(ctx, "product updated directly",
			"product_id", productID,
		)
		return Outcome{Applied: true, Product: updated}, nil
	}

	req := &ChangeRequest{
		ID:          id.New(),
		Kind:        KindFieldChange,
		ProductID:   productID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if priceChanged {
		oldPrice := current.Price
		req.PriceOld = &oldPrice
		req.PriceNew = patch.Price
	}
	if quantityChanged {
		oldQty := current.Quantity
		req.QuantityOld = &oldQty
		req.QuantityNew = patch.Quantity
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return Outcome{}, err
	}

	s.record(ctx, audit.ActionChangeRequested, req)
	s.notifyTransition(ctx, req, fmt.Sprintf("Change requested for product %s", current.Name),
		fmt.Sprintf("A price/quantity change for product %s (%s) awaits review. Request %s.",
			current.Name, current.Code, req.ID))

	logger.Info(ctx, "change request created",
		"request_id", req.ID,
		"product_id", productID,
		"price_changed", priceChanged,
		"quantity_changed", quantityChanged,
	)

	reqID := req.ID
	return Outcome{Applied: false, RequestID: &reqID}, nil
}

// RequestDeletion opens a deletion request for a product. The product
// stays live until a reviewer approves.
func (s *Service) RequestDeletion(ctx context.Context, productID, requestedBy id.ID) (Outcome, error) {
	current, err := s.products.Get(ctx, productID)
	if err != nil {
		return Outcome{}, err
	}

	req := &ChangeRequest{
		ID:          id.New(),
		Kind:        KindDeletion,
		ProductID:   productID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return Outcome{}, err
	}

	s.record(ctx, audit.ActionDeletionRequested, req)
	s.notifyTransition(ctx, req, fmt.Sprintf("Deletion requested for product %s", current.Name),
		fmt.Sprintf("Deletion of product %s (%s) awaits review. Request %s.",
			current.Name, current.Code, req.ID))

	reqID := req.ID
	return Outcome{Applied: false, RequestID: &reqID}, nil
}

// ResolveRequest approves or rejects a pending change request. The
// PENDING check and the terminal write are one atomic check-and-set in
// the repository; of two concurrent reviewers the loser gets an
// already-resolved error and must not retry.
func (s *Service) ResolveRequest(ctx context.Context, requestID, resolvedBy id.ID, decision Decision) (*ChangeRequest, error) {
	status := StatusRejected
	if decision == DecisionApprove {
		status = StatusApproved
	}

	resolved, err := s.requests.Resolve(ctx, requestID, resolvedBy, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if status == StatusApproved {
		if resolved.Kind == KindDeletion {
			if err := s.products.MarkDeleted(ctx, resolved.ProductID); err != nil {
				return nil, err
			}
			s.record(ctx, audit.ActionDeletionApproved, resolved)
		} else {
			if err := s.products.ApplySensitive(ctx, resolved.ProductID, resolved.PriceNew, resolved.QuantityNew); err != nil {
				return nil, err
			}
			s.record(ctx, audit.ActionApproved, resolved)
		}
	} else {
		s.record(ctx, audit.ActionRejected, resolved)
	}

	s.notifyTransition(ctx, resolved,
		fmt.Sprintf("Change request %s %s", resolved.ID, resolved.Status),
		fmt.Sprintf("Request %s for product %s was %s.", resolved.ID, resolved.ProductID, resolved.Status))

	logger.Info(ctx, "change request resolved",
		"request_id", resolved.ID,
		"status", resolved.Status,
		"resolved_by", resolvedBy,
	)
	return resolved, nil
}

// GetRequest retrieves a change request.
func (s *Service) GetRequest(ctx context.Context, requestID id.ID) (*ChangeRequest, error) {
	return s.requests.Get(ctx, requestID)
}

// ListRequests retrieves change requests, optionally by status.
func (s *Service) ListRequests(ctx context.Context, status *Status, limit, offset int) ([]*ChangeRequest, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.requests.List(ctx, status, limit, offset)
}

// record writes an audit entry. Audit failures are logged and swallowed:
// the trail is best-effort from the caller's perspective, the workflow
// transition itself has already happened.
func (s *Service) record(ctx context.Context, kind audit.ActionKind, req *ChangeRequest) {
	actingUser := appctx.GetUserID(ctx)
	if actingUser == "" {
		actingUser = req.RequestedBy.String()
	}
	err := s.auditSink.Record(ctx, audit.Entry{
		ProductID:  req.ProductID,
		ActingUser: actingUser,
		Kind:       kind,
		Payload:    req.Payload(),
	})
	if err != nil {
		logger.Error(ctx, "audit record failed",
			"kind", kind,
			"request_id", req.ID,
			"error", err,
		)
	}
}

// notifyTransition emails reviewers plus the requester. Best-effort: a
// delivery failure never rolls back the transition that triggered it.
func (s *Service) notifyTransition(ctx context.Context, req *ChangeRequest, subject, body string) {
	recipients, err := s.directory.ReviewerEmails(ctx)
	if err != nil {
		logger.Warn(ctx, "reviewer lookup failed", "error", err)
	}
	if email, err := s.directory.UserEmail(ctx, req.RequestedBy); err == nil && email != "" {
		recipients = append(recipients, email)
	}
	if len(recipients) == 0 {
		return
	}
	if err := s.notifier.NotifyReviewers(ctx, recipients, subject, body); err != nil {
		logger.Warn(ctx, "reviewer notification failed",
			"request_id", req.ID,
			"recipients", len(recipients),
			"error", err,
		)
	}
}
