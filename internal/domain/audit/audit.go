// Package audit provides the append-only audit trail contract.
// Implementations live in infrastructure layer.
package audit

import (
	"context"
	"time"

	"gaiafact/internal/core/id"
)

// ActionKind identifies the workflow transition being recorded.
type ActionKind string

const (
	ActionChangeRequested   ActionKind = "CHANGE_REQUESTED"
	ActionApproved          ActionKind = "APPROVED"
	ActionRejected          ActionKind = "REJECTED"
	ActionDeletionRequested ActionKind = "DELETION_REQUESTED"
	ActionDeletionApproved  ActionKind = "DELETION_APPROVED"
)

// Entry is a single audit record. Entries are append-only: they are never
// mutated or deleted once written.
type Entry struct {
	ID         id.ID          `db:"id" json:"id"`
	ProductID  id.ID          `db:"product_id" json:"productId"`
	ActingUser string         `db:"acting_user" json:"actingUser"`
	Kind       ActionKind     `db:"action_kind" json:"actionKind"`
	Payload    map[string]any `db:"-" json:"payload,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// Sink records audit entries. Callers treat Record as fire-and-forget:
// a failed write is logged by the caller, never propagated to the user.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}
