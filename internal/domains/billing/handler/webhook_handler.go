package handler

import (
	"errors"
	"io"
	"net/http"

	"folio-backend/internal/domains/billing"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	service billing.Service
}

func NewWebhookHandler(service billing.Service) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Stripe handles POST /webhooks/stripe
func (h *WebhookHandler) Stripe(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	out, err := h.service.HandleStripe(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	h.respond(c, out, err)
}

// Razorpay handles POST /webhooks/razorpay
func (h *WebhookHandler) Razorpay(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	out, err := h.service.HandleRazorpay(
		c.Request.Context(),
		body,
		c.GetHeader("X-Razorpay-Signature"),
		c.GetHeader("X-Razorpay-Event-Id"),
	)
	h.respond(c, out, err)
}

func (h *WebhookHandler) respond(c *gin.Context, out *billing.Outcome, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidSignature):
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("webhook signature rejected")
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid webhook signature")
	case errors.Is(err, billing.ErrMalformedPayload):
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("webhook payload rejected")
		response.ErrorResponse(c, http.StatusBadRequest, "MALFORMED_PAYLOAD", "Malformed webhook payload")
	case err != nil:
		response.FromError(c, err)
	default:
		response.Success(c, http.StatusOK, out)
	}
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	return body, true
}
