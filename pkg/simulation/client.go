package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is where simulations are started unless configured.
	DefaultEndpoint = "https://api.example.com/simulations"
	// DefaultDelay is the pause applied after every request before the
	// response is handled.
	DefaultDelay = 1500 * time.Millisecond
	// RequestIDHeader carries the per-submission id.
	RequestIDHeader = "X-Request-ID"
)

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Code int
	Text string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend request failed: %d %s", e.Code, e.Text)
}

// StatusCode exposes the HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client posts simulation requests.
type Client struct {
	http     *resty.Client
	endpoint string
	delay    time.Duration
	timeout  time.Duration
	contract *Contract
	logger   *zap.Logger
	newID    func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDelay overrides the artificial delay. Zero disables it.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithContract validates payloads before they are sent.
func WithContract(contract *Contract) ClientOption {
	return func(c *Client) {
		c.contract = contract
	}
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient swaps the underlying transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// NewClient returns a client posting to endpoint. An empty endpoint uses
// DefaultEndpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		http:     resty.New(),
		endpoint: endpoint,
		delay:    DefaultDelay,
		logger:   zap.NewNop(),
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	c.http.SetHeader("Accept", "application/json")
	return c
}

// Endpoint returns the configured URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit posts p and waits for the response plus the artificial delay. Any
// 2xx status is a success; its JSON body is decoded and logged. Other
// statuses return *StatusError.
func (c *Client) Submit(ctx context.Context, p Payload) (Result, error) {
	if c.contract != nil {
		if err := c.contract.ValidatePayload(p); err != nil {
			return Result{}, err
		}
	}

	requestID := c.newID()
	log := c.logger.With(zap.String("request_id", requestID), zap.String("endpoint", c.endpoint))
	log.Info("sending simulation request",
		zap.String("strategy", p.Strategy.Key),
		zap.String("symbol", p.Data.Symbol),
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetHeader("Content-Type", "application/json").
		SetBody(p).
		Post(c.endpoint)

	if waitErr := c.wait(ctx); waitErr != nil && err == nil {
		err = waitErr
	}
	if err != nil {
		log.Warn("simulation request failed", zap.Error(err))
		return Result{}, fmt.Errorf("simulation: request: %w", err)
	}

	if !resp.IsSuccess() {
		statusErr := &StatusError{Code: resp.StatusCode(), Text: http.StatusText(resp.StatusCode())}
		log.Warn("simulation rejected", zap.Int("status", statusErr.Code))
		return Result{}, statusErr
	}

	result := Result{StatusCode: resp.StatusCode(), RequestID: requestID}
	var response any
	if body := resp.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &response); err != nil {
			response = string(body)
		}
	}
	if obj, ok := response.(map[string]any); ok {
		result.Body = obj
		result.ID, _ = obj["id"].(string)
		result.Status, _ = obj["status"].(string)
	}
	log.Info("simulation accepted",
		zap.Int("status", result.StatusCode),
		zap.Any("response", response),
	)
	return result, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
