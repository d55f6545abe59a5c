package handler

import (
	"net/http"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/middleware"
	"folio-backend/internal/shared/request"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service account.Service
}

func NewAccountHandler(service account.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dto, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Location", "/api/v1/accounts/me")
	response.Success(c, http.StatusCreated, dto)
}

// Login handles POST /auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetMe handles GET /accounts/me
func (h *AccountHandler) GetMe(c *gin.Context) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// PatchMe handles PATCH /accounts/me
func (h *AccountHandler) PatchMe(c *gin.Context) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var patch account.AccountPatch
	if err := request.BindStrict(c, &patch); err != nil {
		response.Rejected(c, shared.Reject(shared.ErrInvalidPatch, "", err))
		return
	}

	dto, err := h.service.ApplyPatch(c.Request.Context(), accountID, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}
