// internal/infrastructure/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
	"github.com/your-org/storefront-bff/internal/pkg/metrics"
)

// ErrUnauthorized is returned when the commerce API answers 401
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx answer from the commerce API. Message is the server's
// own text and is safe to show to the shopper.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("commerce api returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to the remote commerce REST API on behalf of the caller whose
// bearer token is in the request context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryMin   time.Duration
	retryMax   time.Duration
	logger     logrus.FieldLogger
}

// NewClient creates a commerce API client
func NewClient(cfg config.UpstreamConfig, logger logrus.FieldLogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryMin:   cfg.RetryMin,
		retryMax:   cfg.RetryMax,
		logger:     logger,
	}
}

// do sends one request and decodes a JSON answer into out (if non-nil).
// Idempotent GETs are retried on network errors and 5xx answers.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	b := &backoff.Backoff{
		Min:    c.retryMin,
		Max:    c.retryMax,
		Jitter: true,
	}

	attempts := 1
	if method == http.MethodGet {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := b.Duration()
			c.logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"attempt":  attempt,
				"delay":    delay,
			}).WithError(lastErr).Warn("Retrying commerce API request")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		retry, err := c.attempt(ctx, method, endpoint, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, payload []byte, out interface{}) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(method, metricEndpoint(endpoint), 0, time.Since(start))
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("commerce api request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(method, metricEndpoint(endpoint), resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return false, ErrUnauthorized
	case resp.StatusCode >= 500:
		return true, &Error{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	case resp.StatusCode >= 300:
		return false, &Error{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return false, nil
}

// errorMessage pulls the human message out of an error body. The commerce
// API answers either {"message": "..."} or plain text.
func errorMessage(body []byte, status string) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		for _, msg := range []string{envelope.Message, envelope.Error, envelope.Title} {
			if msg != "" {
				return msg
			}
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return status
}

// metricEndpoint drops path parameters and query strings to keep label
// cardinality bounded.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	if strings.HasPrefix(endpoint, "/cart/delete/") {
		return "/cart/delete/:id"
	}
	return endpoint
}
