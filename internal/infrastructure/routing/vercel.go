package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"folio-backend/internal/config"
)

// =====================================================
// VERCEL CLIENT
// =====================================================

// VercelClient adds domains to a Vercel project through the REST API.
type VercelClient struct {
	baseURL    string
	token      string
	projectID  string
	teamID     string
	httpClient *http.Client
}

func NewVercelClient(cfg config.RoutingConfig) *VercelClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VercelClient{
		baseURL:    strings.TrimSuffix(cfg.APIURL, "/"),
		token:      cfg.Token,
		projectID:  cfg.ProjectID,
		teamID:     cfg.TeamID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *VercelClient) Name() string { return "vercel" }

type vercelErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("routing provider returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// RegisterDomain calls POST /v10/projects/{id}/domains. A domain already
// attached to this project counts as registered.
func (c *VercelClient) RegisterDomain(ctx context.Context, domain string) error {
	endpoint := fmt.Sprintf("%s/v10/projects/%s/domains", c.baseURL, url.PathEscape(c.projectID))
	if c.teamID != "" {
		endpoint += "?teamId=" + url.QueryEscape(c.teamID)
	}

	body, err := json.Marshal(map[string]string{"name": domain})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call routing provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb vercelErrorBody
	_ = json.Unmarshal(raw, &eb)

	if resp.StatusCode == http.StatusConflict && eb.Error.Code == "domain_already_in_use" {
		return &APIError{StatusCode: resp.StatusCode, Code: eb.Error.Code, Message: eb.Error.Message}
	}
	if resp.StatusCode == http.StatusConflict {
		// domain_already_exists on this project
		return nil
	}
	return &APIError{StatusCode: resp.StatusCode, Code: eb.Error.Code, Message: eb.Error.Message}
}
