package approval

import (
	"context"
	"time"

	"gaiafact/internal/core/id"
)

// Repository defines the interface for change request persistence.
type Repository interface {
	// Create inserts a new PENDING change request.
	Create(ctx context.Context, r *ChangeRequest) error

	// Get retrieves a change request.
	Get(ctx context.Context, requestID id.ID) (*ChangeRequest, error)

	// Resolve atomically moves a request out of PENDING in a single
	// check-and-set: the status precondition is evaluated at write time,
	// so of two concurrent reviewers exactly one wins. The loser gets an
	// already-resolved error; an unknown id gets not-found.
	Resolve(ctx context.Context, requestID, resolvedBy id.ID, status Status, resolvedAt time.Time) (*ChangeRequest, error)

	// List retrieves requests, optionally filtered by status, most recent
	// first.
	List(ctx context.Context, status *Status, limit, offset int) ([]*ChangeRequest, error)
}
