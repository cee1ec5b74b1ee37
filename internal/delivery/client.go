// Package delivery moves encoded lead snapshots to the collector: an
// awaited HTTP client for normal submissions, a best-effort beacon for page
// teardown, and a local store that captures payloads when the network fails.
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Transport delivers one encoded lead snapshot.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
}

// DefaultTimeout bounds a normal submission round trip.
const DefaultTimeout = 10 * time.Second

// HTTPClient posts JSON snapshots to the collector with bearer auth.
type HTTPClient struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient constructs an HTTPClient. If logger is nil a no-op logger
// is used; a zero timeout falls back to DefaultTimeout.
func NewHTTPClient(logger *zap.Logger, endpoint, token string, timeout time.Duration) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Send posts the payload and succeeds on any 2xx status. The response body
// is not consumed beyond error reporting.
func (c *HTTPClient) Send(ctx context.Context, payload []byte) error {
	if c.endpoint == "" {
		return fmt.Errorf("no submit endpoint configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit lead snapshot: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("collector returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("lead snapshot submitted",
		zap.String("op", "delivery.HTTPClient.Send"),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(payload)),
	)
	return nil
}
