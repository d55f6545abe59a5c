package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RejectedError is a refused patch. Code is the server's stable rejection
// code, e.g. SLUG_TAKEN.
type RejectedError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *RejectedError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("autosave: %s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("autosave: %s: %s", e.Code, e.Message)
}

// HTTPFlusher sends edits as PATCH /api/v1/portfolios/:id.
type HTTPFlusher struct {
	BaseURL     string
	PortfolioID string
	Token       string
	Client      *http.Client
}

func NewHTTPFlusher(baseURL, portfolioID, token string) *HTTPFlusher {
	return &HTTPFlusher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		PortfolioID: portfolioID,
		Token:       token,
		Client:      &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Success bool `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func (f *HTTPFlusher) Flush(ctx context.Context, edits Edits) error {
	body, err := json.Marshal(edits)
	if err != nil {
		return fmt.Errorf("autosave: encode patch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/portfolios/%s", f.BaseURL, f.PortfolioID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("autosave: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.Token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("autosave: send patch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	rejected := &RejectedError{Status: resp.StatusCode, Code: "HTTP_" + fmt.Sprint(resp.StatusCode), Message: resp.Status}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil && env.Error != nil {
		rejected.Code = env.Error.Code
		rejected.Message = env.Error.Message
		rejected.Field = env.Error.Details.Field
	}
	return rejected
}
