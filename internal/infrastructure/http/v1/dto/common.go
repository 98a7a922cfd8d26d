// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"gaiafact/internal/core/id"
)

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ListResponse wraps list results with paging metadata.
type ListResponse struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total,omitempty"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
