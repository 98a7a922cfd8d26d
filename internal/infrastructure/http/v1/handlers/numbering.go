package handlers

import (
	"github.com/gin-gonic/gin"

	"gaiafact/internal/domain/numbering"
	"gaiafact/internal/infrastructure/http/v1/dto"
)

// NumberingHandler serves numbering counter administration.
type NumberingHandler struct {
	*BaseHandler
	service *numbering.Service
}

// NewNumberingHandler creates a new numbering handler.
func NewNumberingHandler(base *BaseHandler, service *numbering.Service) *NumberingHandler {
	return &NumberingHandler{BaseHandler: base, service: service}
}

// Get handles GET /numbering/:prefix.
func (h *NumberingHandler) Get(c *gin.Context) {
	state, err := h.service.Peek(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterState(state))
}

// LoadRange handles PUT /numbering/:prefix. Installs a newly authorized
// range, resetting the counter.
func (h *NumberingHandler) LoadRange(c *gin.Context) {
	var req dto.LoadRangeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	state, err := h.service.LoadNewRange(c.Request.Context(), c.Param("prefix"),
		req.Start, req.End, req.AuthorizationRef)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCounterState(state))
}
