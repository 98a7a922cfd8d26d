// Package approval implements the product change approval workflow: a
// two-state machine gating price/quantity mutations (and deletions) behind
// a second reviewer, with an audit entry per transition.
package approval

import (
	"time"

	"github.com/shopspring/decimal"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/product"
)

// Status of a change request. PENDING transitions exactly once, to either
// terminal state.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Kind distinguishes field-change requests from deletion requests.
type Kind string

const (
	KindFieldChange Kind = "FIELD_CHANGE"
	KindDeletion    Kind = "DELETION"
)

// Decision is a reviewer's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision validates a decision string from the API boundary.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	default:
		return "", apperror.NewValidation("decision must be \"approve\" or \"reject\"")
	}
}

// ChangeRequest is one pending or resolved sensitive product mutation.
// Resolved requests are retained indefinitely as part of the audit trail.
type ChangeRequest struct {
	ID          id.ID  `db:"id" json:"id"`
	Kind        Kind   `db:"kind" json:"kind"`
	ProductID   id.ID  `db:"product_id" json:"productId"`
	RequestedBy id.ID  `db:"requested_by" json:"requestedBy"`
	ApprovedBy  *id.ID `db:"approved_by" json:"approvedBy,omitempty"`

	// Old/new pairs, set only for the fields the request changes.
	PriceOld    *decimal.Decimal `db:"price_old" json:"priceOld,omitempty"`
	PriceNew    *decimal.Decimal `db:"price_new" json:"priceNew,omitempty"`
	QuantityOld *decimal.Decimal `db:"quantity_old" json:"quantityOld,omitempty"`
	QuantityNew *decimal.Decimal `db:"quantity_new" json:"quantityNew,omitempty"`

	Status      Status     `db:"status" json:"status"`
	RequestedAt time.Time  `db:"requested_at" json:"requestedAt"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// Payload renders the old/new pairs for audit entries and notifications.
func (r *ChangeRequest) Payload() map[string]any {
	payload := map[string]any{
		"kind": string(r.Kind),
	}
	if r.PriceOld != nil {
		payload["priceOld"] = r.PriceOld.String()
		payload["priceNew"] = r.PriceNew.String()
	}
	if r.QuantityOld != nil {
		payload["quantityOld"] = r.QuantityOld.String()
		payload["quantityNew"] = r.QuantityNew.String()
	}
	return payload
}

// Outcome of a propose call: either the patch was applied directly, or a
// pending change request was created and the product left untouched.
type Outcome struct {
	Applied   bool             `json:"applied"`
	Product   *product.Product `json:"product,omitempty"`
	RequestID *id.ID           `json:"requestId,omitempty"`
}
