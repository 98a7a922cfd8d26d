package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gaiafact/internal/domain/approval"
)

// UpdateOutcomeResponse is the result of a product update: either the
// patch was applied, or a change request now awaits review.
type UpdateOutcomeResponse struct {
	Applied   bool             `json:"applied"`
	Product   *ProductResponse `json:"product,omitempty"`
	RequestID string           `json:"requestId,omitempty"`
}

// FromOutcome maps an approval outcome.
func FromOutcome(out approval.Outcome) UpdateOutcomeResponse {
	resp := UpdateOutcomeResponse{Applied: out.Applied}
	if out.Product != nil {
		p := FromProduct(out.Product)
		resp.Product = &p
	}
	if out.RequestID != nil {
		resp.RequestID = out.RequestID.String()
	}
	return resp
}

// ChangeRequestResponse contains change request fields.
type ChangeRequestResponse struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	ProductID   string     `json:"productId"`
	RequestedBy string     `json:"requestedBy"`
	ApprovedBy  string     `json:"approvedBy,omitempty"`
	PriceOld    *string    `json:"priceOld,omitempty"`
	PriceNew    *string    `json:"priceNew,omitempty"`
	QuantityOld *string    `json:"quantityOld,omitempty"`
	QuantityNew *string    `json:"quantityNew,omitempty"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requestedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// FromChangeRequest maps a change request.
func FromChangeRequest(req *approval.ChangeRequest) ChangeRequestResponse {
	resp := ChangeRequestResponse{
		ID:          req.ID.String(),
		Kind:        string(req.Kind),
		ProductID:   req.ProductID.String(),
		RequestedBy: req.RequestedBy.String(),
		PriceOld:    decString(req.PriceOld),
		PriceNew:    decString(req.PriceNew),
		QuantityOld: decString(req.QuantityOld),
		QuantityNew: decString(req.QuantityNew),
		Status:      string(req.Status),
		RequestedAt: req.RequestedAt,
		ResolvedAt:  req.ResolvedAt,
	}
	if req.ApprovedBy != nil {
		resp.ApprovedBy = req.ApprovedBy.String()
	}
	return resp
}

// FromChangeRequests maps a change request slice.
func FromChangeRequests(items []*approval.ChangeRequest) []ChangeRequestResponse {
	out := make([]ChangeRequestResponse, len(items))
	for i, req := range items {
		out[i] = FromChangeRequest(req)
	}
	return out
}

func decString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
