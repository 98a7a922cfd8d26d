package dto

import (
	"time"

	"gaiafact/internal/domain/numbering"
)

// LoadRangeRequest installs a new authorized numbering range.
type LoadRangeRequest struct {
	Start            int64  `json:"start" binding:"required"`
	End              int64  `json:"end" binding:"required"`
	AuthorizationRef string `json:"authorizationRef"`
}

// CounterResponse contains numbering counter state.
type CounterResponse struct {
	Prefix           string    `json:"prefix"`
	CurrentNumber    int64     `json:"currentNumber"`
	RangeEnd         int64     `json:"rangeEnd"`
	Remaining        int64     `json:"remaining"`
	AuthorizationRef string    `json:"authorizationRef,omitempty"`
	ResetAt          time.Time `json:"resetAt"`
}

// FromCounterState maps counter state.
func FromCounterState(state numbering.CounterState) CounterResponse {
	return CounterResponse{
		Prefix:           state.Prefix,
		CurrentNumber:    state.CurrentNumber,
		RangeEnd:         state.RangeEnd,
		Remaining:        state.RangeEnd - state.CurrentNumber,
		AuthorizationRef: state.AuthorizationRef,
		ResetAt:          state.ResetAt,
	}
}
