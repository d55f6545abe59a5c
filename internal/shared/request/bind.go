package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// BindStrict decodes a JSON body and rejects unknown fields and
// trailing data.
func BindStrict(c *gin.Context, dest interface{}) error {
	dec := json.NewDecoder(io.LimitReader(c.Request.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
