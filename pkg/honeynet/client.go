package honeynet

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/marmos91/ftpot/internal/logger"
	"github.com/marmos91/ftpot/pkg/config"
	"github.com/marmos91/ftpot/pkg/metrics"
)

// serviceName identifies this honeypot type in event contents.
const serviceName = "ftp"

// Client POSTs events to the collector.
//
// Emission is fire-and-forget: failures are logged and counted, never
// retried, and never block the calling session. A client with an empty
// collector URL drops all events.
type Client struct {
	cfg     config.HoneynetConfig
	http    *http.Client
	metrics metrics.FTPMetrics
}

// NewClient creates a collector client from the honeynet configuration.
func NewClient(cfg config.HoneynetConfig, m metrics.FTPMetrics) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS},
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
		},
		metrics: m,
	}
}

// Enabled reports whether a collector URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.URL != ""
}

// EmitLogin reports one credential attempt. Returns immediately; the POST
// happens in a background goroutine.
func (c *Client) EmitLogin(srcIP, user, pass string) {
	if !c.Enabled() {
		return
	}

	event := Event{
		HoneypotID: c.cfg.ID,
		Token:      c.cfg.Token,
		Timestamp:  eventTimestamp(),
		Type:       EventTypeLogin,
		Content: LoginContent{
			SrcIP:   srcIP,
			Service: serviceName,
			User:    user,
			Pass:    pass,
		},
	}

	go c.send(event)
}

// EmitFile reports one uploaded file. The hash argument already carries the
// scan result ("<sha256> | <vt result>"). Returns immediately; the POST
// happens in a background goroutine.
func (c *Client) EmitFile(srcIP, fname, hash string, size int64) {
	if !c.Enabled() {
		return
	}

	event := Event{
		HoneypotID: c.cfg.ID,
		Token:      c.cfg.Token,
		Timestamp:  eventTimestamp(),
		Type:       EventTypeFile,
		Content: FileContent{
			SrcIP:   srcIP,
			Service: serviceName,
			Fname:   fname,
			SHA1:    hash,
			Size:    strconv.FormatInt(size, 10),
		},
	}

	go c.send(event)
}

// send POSTs one event to the collector.
func (c *Client) send(event Event) {
	if err := c.post(event); err != nil {
		logger.Warn("Failed to deliver event to collector",
			"type", event.Type,
			"error", err)
		metrics.EventSent(c.metrics, "error")
		return
	}

	logger.Debug("Event delivered to collector", "type", event.Type)
	metrics.EventSent(c.metrics, "ok")
}

func (c *Client) post(event Event) error {
	body, err := json.Marshal(envelope{Event: event})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	resp, err := c.http.Post(c.cfg.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to POST event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned status %d", resp.StatusCode)
	}

	return nil
}
