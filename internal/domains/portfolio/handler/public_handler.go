package handler

import (
	"net/http"

	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	service portfolio.PublicService
}

func NewPublicHandler(service portfolio.PublicService) *PublicHandler {
	return &PublicHandler{service: service}
}

// BySlug handles GET /public/portfolios/slug/:slug
func (h *PublicHandler) BySlug(c *gin.Context) {
	p, err := h.service.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=60")
	response.Success(c, http.StatusOK, p)
}

// ByDomain handles GET /public/portfolios/domain/:domain
func (h *PublicHandler) ByDomain(c *gin.Context) {
	p, err := h.service.ByDomain(c.Request.Context(), c.Param("domain"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=60")
	response.Success(c, http.StatusOK, p)
}
