// Package virustotal looks up upload hashes against the VirusTotal API.
package virustotal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/metrics"
)

// NotFoundResult is stored for hashes VirusTotal does not know.
const NotFoundResult = "Hash not found on VT."

// Client queries the VirusTotal file endpoint by hash.
type Client struct {
	cfg     config.VirusTotalConfig
	http    *http.Client
	metrics metrics.FTPMetrics
}

// NewClient creates a VirusTotal client from the configuration.
func NewClient(cfg config.VirusTotalConfig, m metrics.FTPMetrics) *Client {
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		metrics: m,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Token != ""
}

// Check looks up a hash.
//
// Returns the result string to persist, or rateLimited=true when the API
// quota is exhausted; the caller should stop the current enrichment pass and
// retry the remaining hashes on the next run. Unknown hashes yield
// NotFoundResult, not an error.
func (c *Client) Check(ctx context.Context, hash string) (result string, rateLimited bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.HashURL+hash, nil)
	if err != nil {
		metrics.ScanCompleted(c.metrics, "error")
		return "", false, fmt.Errorf("failed to build VT request: %w", err)
	}
	req.Header.Set("x-apikey", c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ScanCompleted(c.metrics, "error")
		return "", false, fmt.Errorf("failed to query VT: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		metrics.ScanCompleted(c.metrics, "found")
		return fmt.Sprintf("%s/%s/details", c.cfg.ResultURL, hash), false, nil

	case http.StatusTooManyRequests:
		logger.Warn("VirusTotal rate limit reached, deferring remaining lookups")
		metrics.ScanCompleted(c.metrics, "rate_limited")
		return "", true, nil

	default:
		logger.Debug("Hash unknown to VirusTotal", "hash", hash, "status", resp.StatusCode)
		metrics.ScanCompleted(c.metrics, "not_found")
		return NotFoundResult, false, nil
	}
}
