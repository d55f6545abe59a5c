package handler

import (
	"io"
	"net/http"

	"folio-backend/internal/domains/upload"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/middleware"
	"folio-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UploadHandler struct {
	service  upload.Service
	maxBytes int64
}

func NewUploadHandler(service upload.Service, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// Upload handles POST /uploads (multipart field "file")
func (h *UploadHandler) Upload(c *gin.Context) {
	accountID, err := middleware.AccountID(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	// Multipart overhead on top of the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+(1<<20))

	header, err := c.FormFile("file")
	if err != nil {
		log.Debug().Err(err).Msg("missing or oversized upload")
		response.Rejected(c, shared.Reject(shared.ErrInvalidUpload, "file", err))
		return
	}
	if header.Size > h.maxBytes {
		response.Rejected(c, shared.Reject(shared.ErrInvalidUpload, "file", nil))
		return
	}

	f, err := header.Open()
	if err != nil {
		response.InternalServerError(c, "Failed to read upload")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalServerError(c, "Failed to read upload")
		return
	}

	result, err := h.service.Upload(c.Request.Context(), accountID, header.Filename, data)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
