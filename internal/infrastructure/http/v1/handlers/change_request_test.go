package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/infrastructure/http/v1/middleware"
)

func newResolveRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	h := NewChangeRequestHandler(NewBaseHandler(), nil)
	router.POST("/change-requests/:id/:decision", h.Resolve)
	return router
}

func TestResolveRejectsUnknownDecision(t *testing.T) {
	router := newResolveRouter()

	req := httptest.NewRequest(http.MethodPost,
		"/change-requests/"+id.New().String()+"/escalate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeValidation, body.Code)
	assert.Contains(t, body.Message, "approve")
}

func TestResolveRejectsMalformedID(t *testing.T) {
	router := newResolveRouter()

	req := httptest.NewRequest(http.MethodPost,
		"/change-requests/not-a-uuid/approve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
