package handlers

import (
	"github.com/gin-gonic/gin"

	"gaiafact/internal/infrastructure/http/v1/dto"
	"gaiafact/internal/infrastructure/storage/postgres"
)

// AuditHandler serves the audit trail query endpoint.
type AuditHandler struct {
	*BaseHandler
	store *postgres.AuditStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, store *postgres.AuditStore) *AuditHandler {
	return &AuditHandler{BaseHandler: base, store: store}
}

// ProductHistory handles GET /audit/products/:id.
func (h *AuditHandler) ProductHistory(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.store.History(c.Request.Context(), productID, h.ParseIntQuery(c, "limit", 100))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items: entries,
		Limit: len(entries),
	})
}
