package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

// maxResponseBytes caps how much of a response body we read
const maxResponseBytes = 1 << 20

// Client talks to the spreadsheet endpoint. It knows nothing about retries;
// every call is a single HTTP exchange bounded by the caller's context.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new sheets endpoint client
func NewClient(cfg config.SheetsConfig, logger *zap.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		endpoint: endpoint,
		// Per-attempt deadlines come from the context
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
	}
}

// NewClientWithHTTP lets tests and tools supply their own http.Client
func NewClientWithHTTP(endpoint string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// QueryURL is the full GET URL for a payload. Values are stringified the way
// the endpoint reads them back.
func (c *Client) QueryURL(payload domain.Payload) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid endpoint: %q is not absolute", c.endpoint)
	}

	values := u.Query()
	for _, k := range payload.Keys() {
		values.Set(k, payload.String(k))
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// SubmitQuery sends the payload as URL query parameters
func (c *Client) SubmitQuery(ctx context.Context, payload domain.Payload) (*Response, error) {
	target, err := c.QueryURL(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("Submitting via query", zap.Int("url_length", len(target)))
	return c.do(req, "submit query")
}

// SubmitBody sends the payload as a JSON body
func (c *Client) SubmitBody(ctx context.Context, payload domain.Payload) (*Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Submitting via body", zap.Int("body_bytes", len(jsonData)))
	return c.do(req, "submit body")
}

// Probe issues a bare GET and expects the same status discriminator as a submission
func (c *Client) Probe(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, "probe")
}

func (c *Client) do(req *http.Request, op string) (*Response, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewNetworkError(op, fmt.Errorf("failed to read response: %w", err))
	}

	parsed, err := parseResponse(resp.StatusCode, body)
	if err != nil {
		c.logger.Warn("Sheets endpoint rejected request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return nil, err
	}
	return parsed, nil
}
