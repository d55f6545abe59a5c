package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"folio-backend/internal/domains/analytics"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/middleware"
	"folio-backend/internal/shared/response"
	"folio-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Track handles POST /public/analytics/:slug
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req analytics.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	visitor := analytics.Visitor{
		IP:        utils.ExtractClientIP(c),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}
	if err := h.service.Track(c.Request.Context(), c.Param("slug"), req, visitor); err != nil {
		response.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Summary handles GET /portfolios/:id/analytics?days=30
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, ok := h.summary(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Export handles GET /portfolios/:id/analytics/export?days=30 and streams
// the same summary as an xlsx workbook.
func (h *AnalyticsHandler) Export(c *gin.Context) {
	summary, ok := h.summary(c)
	if !ok {
		return
	}

	f, err := analytics.BuildWorkbook(summary)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("analytics-%s-%s.xlsx", summary.PortfolioID, summary.Since.Format("20060102"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Str("portfolio_id", summary.PortfolioID.String()).Msg("failed to stream analytics export")
	}
}

func (h *AnalyticsHandler) summary(c *gin.Context) (*analytics.Summary, bool) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return nil, false
	}
	portfolioID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Rejected(c, shared.ErrNotFound)
		return nil, false
	}

	days := analytics.DefaultSummaryDays
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			response.BadRequest(c, "days must be a positive integer")
			return nil, false
		}
	}

	summary, err := h.service.Summary(c.Request.Context(), portfolioID, accountID, days)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	return summary, true
}
