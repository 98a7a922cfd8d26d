package handlers

import (
	"github.com/gin-gonic/gin"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/domain/approval"
	"gaiafact/internal/infrastructure/http/v1/dto"
	"gaiafact/internal/infrastructure/http/v1/middleware"
)

// ChangeRequestHandler serves the review queue.
type ChangeRequestHandler struct {
	*BaseHandler
	service *approval.Service
}

// NewChangeRequestHandler creates a new change request handler.
func NewChangeRequestHandler(base *BaseHandler, service *approval.Service) *ChangeRequestHandler {
	return &ChangeRequestHandler{BaseHandler: base, service: service}
}

// List handles GET /change-requests. Defaults to pending requests;
// ?status=APPROVED|REJECTED|PENDING|all selects otherwise.
func (h *ChangeRequestHandler) List(c *gin.Context) {
	var status *approval.Status
	switch s := c.DefaultQuery("status", string(approval.StatusPending)); s {
	case "all":
	case string(approval.StatusPending), string(approval.StatusApproved), string(approval.StatusRejected):
		st := approval.Status(s)
		status = &st
	default:
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", s))
		return
	}

	items, err := h.service.ListRequests(c.Request.Context(), status,
		h.ParseIntQuery(c, "limit", 50), h.ParseIntQuery(c, "offset", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:  dto.FromChangeRequests(items),
		Limit:  len(items),
		Offset: h.ParseIntQuery(c, "offset", 0),
	})
}

// Get handles GET /change-requests/:id.
func (h *ChangeRequestHandler) Get(c *gin.Context) {
	requestID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	req, err := h.service.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromChangeRequest(req))
}

// Resolve handles POST /change-requests/:id/approve and
// POST /change-requests/:id/reject.
func (h *ChangeRequestHandler) Resolve(c *gin.Context) {
	decision, err := approval.ParseDecision(c.Param("decision"))
	if err != nil {
		h.Error(c, err)
		return
	}
	requestID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	resolved, err := h.service.ResolveRequest(c.Request.Context(), requestID, userID, decision)
	if err != nil {
		h.Error(c, err)
		return
	}

	middleware.ChangeRequestsResolved.WithLabelValues(string(resolved.Status)).Inc()
	h.OK(c, dto.FromChangeRequest(resolved))
}
