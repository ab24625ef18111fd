// Package analysis sends uploaded product images to the analysis backend.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/platform/config"
	"github.com/sony/gobreaker/v2"
)

// FileField is the multipart field carrying the image.
const FileField = "file"

// maxResponseBytes caps how much of a reply is read.
const maxResponseBytes = 1 << 20

// Client posts images to {baseURL}/analyze. Failed calls are retried up to
// the configured attempts, and every attempt goes through a circuit breaker.
type Client struct {
	endpoint   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	retry      config.RetryConfig
	logger     *slog.Logger
}

// NewClient creates a Client for the analysis backend rooted at baseURL.
func NewClient(baseURL string, resilience config.ResilienceConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/analyze",
		httpClient: httpClient,
		breaker:    newCircuitBreaker(resilience.CircuitBreaker),
		retry:      resilience.Retry,
		logger:     logger.With("component", "analysis"),
	}
}

func newCircuitBreaker(cfg config.CircuitBreakerConfig) *gobreaker.CircuitBreaker[[]byte] {
	st := gobreaker.Settings{
		Name:        "analysis-backend",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// a rejected request says nothing about backend health
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.IsClientError()
		},
	}
	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// Analyze uploads content as fileName and returns the backend's reply body.
func (c *Client) Analyze(ctx context.Context, fileName, contentType string, content []byte) ([]byte, error) {
	if fileName == "" || len(content) == 0 {
		return nil, ErrNoFile
	}
	body, formContentType, err := encodeFile(fileName, contentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to encode multipart body: %w", err)
	}

	attempts := max(c.retry.MaxAttempts, 1)
	var lastErr error
	for attempt := uint(1); attempt <= attempts; attempt++ {
		reply, err := c.breaker.Execute(func() ([]byte, error) {
			return c.send(ctx, body, formContentType)
		})
		if err == nil {
			return reply, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		c.logger.DebugContext(ctx, "Analysis attempt failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, ctx.Err())
		case <-time.After(c.retry.InitialBackoff):
		}
	}
	return nil, lastErr
}

func (c *Client) send(ctx context.Context, body []byte, formContentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading reply: %v", ErrBackendUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(reply)}
	}
	return reply, nil
}

// encodeFile builds a multipart/form-data body with content under FileField.
func encodeFile(fileName, contentType string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     FileField,
		"filename": fileName,
	}))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
