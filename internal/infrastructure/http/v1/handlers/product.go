package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gaiafact/internal/domain/approval"
	"gaiafact/internal/domain/product"
	"gaiafact/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog. Updates and deletions route
// through the approval service so sensitive changes land behind review.
type ProductHandler struct {
	*BaseHandler
	products *product.Service
	approval *approval.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, products *product.Service, approvalSvc *approval.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, products: products, approval: approvalSvc}
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    h.ParseIntQuery(c, "limit", 50),
		Offset:   h.ParseIntQuery(c, "offset", 0),
	}

	result, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:  dto.FromProducts(result.Items),
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromProduct(p))
}

// Update handles PUT /products/:id. Non-sensitive fields apply directly;
// a price or quantity delta opens a change request instead.
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	outcome, err := h.approval.ProposeUpdate(c.Request.Context(), productID, userID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if !outcome.Applied {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.FromOutcome(outcome))
}

// Delete handles DELETE /products/:id by opening a deletion request.
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	outcome, err := h.approval.RequestDeletion(c.Request.Context(), productID, userID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.FromOutcome(outcome))
}
