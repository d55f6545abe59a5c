package handler

import (
	"errors"
	"io"
	"net/http"

	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type DomainHandler struct {
	service portfolio.DomainService
}

func NewDomainHandler(service portfolio.DomainService) *DomainHandler {
	return &DomainHandler{service: service}
}

// Status handles GET /portfolios/:id/domain
func (h *DomainHandler) Status(c *gin.Context) {
	accountID, portfolioID, ok := ownerAndID(c)
	if !ok {
		return
	}

	status, err := h.service.Instructions(c.Request.Context(), portfolioID, accountID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}

// Verify handles POST /portfolios/:id/domain/verify. The body is optional;
// when given, its domain must match the stored one.
func (h *DomainHandler) Verify(c *gin.Context) {
	accountID, portfolioID, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req portfolio.VerifyDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Rejected(c, shared.Reject(shared.ErrInvalidPatch, "domain", err))
		return
	}
	if err := req.Validate(); err != nil {
		response.Rejected(c, shared.Reject(shared.ErrInvalidPatch, "domain", err))
		return
	}

	result, err := h.service.Verify(c.Request.Context(), portfolioID, req.Domain, accountID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
