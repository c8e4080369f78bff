// Package embed renders text cards through the hosted embed tool and returns shareable links.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public embed tool host
	DefaultBaseURL = "https://nemtudo.me"

	embedsPath = "/api/tools/embeds"
	linkPath   = "/e/"
)

// Embed is one rendered card
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ThumbImage  bool   `json:"thumbImage"`
	Color       int    `json:"color"`
}

type renderResponse struct {
	Status int `json:"status"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Client calls the embed rendering API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an embed client. requestsPerSecond <= 0 disables rate limiting.
func NewClient(baseURL string, requestsPerSecond float64, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// WithHTTPClient replaces the HTTP client, mostly for tests
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// Render posts e and returns the URL of the hosted card
func (c *Client) Render(ctx context.Context, e Embed) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for embed rate limit: %w", err)
	}

	body, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal embed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+embedsPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "embed request failed", tint.Err(err))
		return "", NewAPIError(0, 0, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewAPIError(resp.StatusCode, 0, "failed to read response", err)
	}

	var result renderResponse
	if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode == http.StatusOK {
		return "", NewAPIError(resp.StatusCode, 0, "failed to decode response", err)
	}

	if resp.StatusCode != http.StatusOK || result.Status != http.StatusOK {
		c.logger.ErrorContext(ctx, "embed API error",
			"status_code", resp.StatusCode,
			"body_status", result.Status,
			"response_body", string(raw))
		return "", NewAPIError(resp.StatusCode, result.Status, "render rejected", nil)
	}
	if result.Data.ID == "" {
		return "", NewAPIError(resp.StatusCode, result.Status, "response has no embed id", nil)
	}

	return c.Link(result.Data.ID), nil
}

// Link returns the public URL of a rendered embed
func (c *Client) Link(id string) string {
	return c.baseURL + linkPath + id
}

// APIError is returned for any unsuccessful render
type APIError struct {
	StatusCode int
	BodyStatus int
	Message    string
	Err        error
}

// NewAPIError creates a new API error
func NewAPIError(statusCode, bodyStatus int, message string, err error) *APIError {
	return &APIError{StatusCode: statusCode, BodyStatus: bodyStatus, Message: message, Err: err}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embed API error (status %d/%d): %s: %v", e.StatusCode, e.BodyStatus, e.Message, e.Err)
	}
	return fmt.Sprintf("embed API error (status %d/%d): %s", e.StatusCode, e.BodyStatus, e.Message)
}

// Unwrap implements error unwrapping
func (e *APIError) Unwrap() error {
	return e.Err
}
