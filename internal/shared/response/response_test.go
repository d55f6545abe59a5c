package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"folio-backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	fn(c)

	var env Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestFromError_WrappedRejectionKeepsCode(t *testing.T) {
	err := fmt.Errorf("apply patch: %w", shared.Reject(shared.ErrSlugTaken, "slug", nil))
	w, env := render(func(c *gin.Context) { FromError(c, err) })

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SLUG_TAKEN", env.Error.Code)
	assert.Equal(t, map[string]interface{}{"field": "slug"}, env.Error.Details)
}

func TestFromError_InternalErrorsStayPrivate(t *testing.T) {
	w, env := render(func(c *gin.Context) { FromError(c, errors.New("pq: password authentication failed")) })

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", env.Error.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRejected_ValidationReasonOnlyForInvalidPatch(t *testing.T) {
	_, env := render(func(c *gin.Context) {
		Rejected(c, shared.Reject(shared.ErrInvalidPatch, "title", errors.New("the length must be no more than 120")))
	})
	details := env.Error.Details.(map[string]interface{})
	assert.Equal(t, "title", details["field"])
	assert.Contains(t, details["reason"], "120")

	_, env = render(func(c *gin.Context) {
		Rejected(c, shared.Reject(shared.ErrDomainMismatch, "", errors.New("row changed underneath")))
	})
	assert.Nil(t, env.Error.Details)
}

func TestSuccessWithMeta(t *testing.T) {
	w, env := render(func(c *gin.Context) {
		SuccessWithMeta(c, http.StatusOK, []string{"a", "b"}, &Meta{Total: 2})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 2, env.Meta.Total)
}
