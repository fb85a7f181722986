package providers

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Blizzyboii/calhacks/internal/config"
	"github.com/Blizzyboii/calhacks/internal/media"
)

// Client dispatches formatted requests to the provider endpoints. When a
// metering gateway is configured, calls are rewritten through its forward
// route and authenticated with the forward token instead of the provider key.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	gateway    config.GatewayConfig
}

// NewClient creates a dispatch client with the configured per-call timeout.
func NewClient(log *slog.Logger, cfg config.LLMConfig) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		logger:     log.With(slog.String("service", "dispatch")),
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		gateway:    cfg.Gateway,
	}
}

// Do sends the request and returns the raw response body. Non-2xx statuses
// are errors carrying a prefix of the body for diagnosis. No retries.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	target := req.URL
	headers := req.Headers
	if c.gateway.BaseURL != "" {
		target = c.gateway.BaseURL + "/forward?u=" + url.QueryEscape(req.URL)
		headers = make(map[string]string, len(req.Headers)+1)
		for k, v := range req.Headers {
			headers[k] = v
		}
		headers["Authorization"] = "Bearer " + c.gateway.ForwardToken
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("create provider request: %w", err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("dispatch to %s: %w", req.Family, err)
	}
	defer resp.Body.Close()

	body, err := media.ReadAllWithLimit(resp.Body, media.MaxAssetBytes)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	logger := c.logger.With(
		slog.String("family", string(req.Family)),
		slog.String("model", req.Model),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	if requestID := resp.Header.Get("X-Lava-Request-Id"); requestID != "" {
		logger = logger.With(slog.String("gateway_request_id", requestID))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("provider call failed")
		return nil, fmt.Errorf("provider %s returned status %d: %s",
			req.Family, resp.StatusCode, truncate(string(body), 200))
	}
	logger.Debug("provider call completed")
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
