package handler

import (
	"net/http"

	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/middleware"
	"folio-backend/internal/shared/request"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PortfolioHandler struct {
	service portfolio.Service
}

func NewPortfolioHandler(service portfolio.Service) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// Create handles POST /portfolios
func (h *PortfolioHandler) Create(c *gin.Context) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req portfolio.CreatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.service.Create(c.Request.Context(), accountID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Location", "/api/v1/portfolios/"+p.ID.String())
	response.Success(c, http.StatusCreated, p)
}

// List handles GET /portfolios
func (h *PortfolioHandler) List(c *gin.Context) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	list, err := h.service.ListMine(c.Request.Context(), accountID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, list, &response.Meta{Total: len(list)})
}

// Get handles GET /portfolios/:id
func (h *PortfolioHandler) Get(c *gin.Context) {
	accountID, portfolioID, ok := ownerAndID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), accountID, portfolioID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// Patch handles PATCH /portfolios/:id
func (h *PortfolioHandler) Patch(c *gin.Context) {
	accountID, portfolioID, ok := ownerAndID(c)
	if !ok {
		return
	}

	var patch portfolio.PortfolioPatch
	if err := request.BindStrict(c, &patch); err != nil {
		response.Rejected(c, shared.Reject(shared.ErrInvalidPatch, "", err))
		return
	}

	p, err := h.service.ApplyPatch(c.Request.Context(), portfolioID, patch, accountID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ownerAndID reads the caller and the :id path param, answering the
// request itself when either is missing.
func ownerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return uuid.Nil, uuid.Nil, false
	}

	portfolioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Rejected(c, shared.ErrNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return accountID, portfolioID, true
}
