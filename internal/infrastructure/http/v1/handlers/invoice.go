package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gaiafact/internal/domain/invoice"
	"gaiafact/internal/infrastructure/http/v1/dto"
	"gaiafact/internal/infrastructure/http/v1/middleware"
)

// InvoiceHandler serves invoice creation and lookup.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Create(c.Request.Context(), draft, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	middleware.InvoiceNumbersIssued.WithLabelValues(invoice.DefaultPrefix).Inc()
	c.JSON(http.StatusCreated, dto.FromInvoice(inv))
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInvoice(inv))
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := invoice.ListFilter{
		CustomerTaxID: c.Query("customerTaxId"),
		Limit:         h.ParseIntQuery(c, "limit", 50),
		Offset:        h.ParseIntQuery(c, "offset", 0),
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:  dto.FromInvoices(items),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
