package remote

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

	"github.com/dredimura/surface/internal/logging"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

const defaultTimeout = 8 * time.Second

// maxBody bounds the response size read from the server.
const maxBody = 1 << 20

type licenseRequest struct {
	Code      string `json:"code"`
	MachineID string `json:"machineId"`
}

type licenseResponse struct {
	Status string                 `json:"status"`
	Info   *domain.ActivationInfo `json:"info,omitempty"`
}

// Client implements ports.LicenseAuthority against a remote server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.LicenseAuthority = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client (8s timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Activate(ctx context.Context, code, machineID string) ports.LicenseResult {
	return c.call(ctx, "activate", code, machineID)
}

func (c *Client) Deactivate(ctx context.Context, code, machineID string) ports.LicenseResult {
	return c.call(ctx, "deactivate", code, machineID)
}

func (c *Client) Validate(ctx context.Context, code, machineID string) ports.LicenseResult {
	return c.call(ctx, "validate", code, machineID)
}

func (c *Client) call(ctx context.Context, op, code, machineID string) ports.LicenseResult {
	res, err := c.post(ctx, op, licenseRequest{Code: code, MachineID: machineID})
	if err != nil {
		c.logger.Warn("License server request failed", "op", op, "err", err)
		return ports.LicenseResult{Status: domain.StatusNetworkError}
	}
	return res
}

func (c *Client) post(ctx context.Context, op string, body licenseRequest) (ports.LicenseResult, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return ports.LicenseResult{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/licenses/"+op, bytes.NewReader(data))
	if err != nil {
		return ports.LicenseResult{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.LicenseResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("License server error", "op", op, "code", resp.StatusCode)
		return ports.LicenseResult{Status: domain.StatusServerError}, nil
	}

	var out licenseResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&out); err != nil {
		c.logger.Warn("License server sent an unreadable response", "op", op, "code", resp.StatusCode, "err", err)
		return ports.LicenseResult{Status: domain.StatusServerError}, nil
	}

	return ports.LicenseResult{Status: domain.ParseStatus(out.Status), Info: out.Info}, nil
}
