package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gaiafact/internal/domain/auth"
	"gaiafact/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves registration, login and role management.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, user, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LoginResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User:        dto.FromUser(user),
	})
}

// SetRole handles PUT /users/:id/role.
func (h *AuthHandler) SetRole(c *gin.Context) {
	userID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.SetRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}
