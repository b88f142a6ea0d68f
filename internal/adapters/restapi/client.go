// Package restapi reads journal trades from the journal web backend.
package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"

	"tradeJournal/internal/ports"
)

const (
	tradesPath      = "/api/trades"
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 512
)

// Client implements ports.TradeSource against the backend's trade listing endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     ports.Logger
	maxRetries int
	retryMin   time.Duration
	retryMax   time.Duration
}

// Config holds configuration for the REST client.
type Config struct {
	BaseURL    string
	Token      string        // Bearer token, optional
	Timeout    time.Duration // Per request, defaults to 15s
	MaxRetries int           // Retries on 429, 5xx and connection errors
	RetryMin   time.Duration
	RetryMax   time.Duration
	HTTPClient *http.Client
	Logger     ports.Logger
}

// New creates a REST trade source.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for REST client")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("REST base URL is empty: %w", ports.ErrConfigurationError)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid REST base URL %q: %w: %w", base, ports.ErrConfigurationError, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retryMin := cfg.RetryMin
	if retryMin <= 0 {
		retryMin = 250 * time.Millisecond
	}
	retryMax := cfg.RetryMax
	if retryMax < retryMin {
		retryMax = 5 * time.Second
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     cfg.Logger,
		maxRetries: max(cfg.MaxRetries, 0),
		retryMin:   retryMin,
		retryMax:   retryMax,
	}, nil
}

type tradesResponse struct {
	Trades []map[string]any `json:"trades"`
	Error  string           `json:"error,omitempty"`
}

// FetchTrades lists the trades of a user. Records keep the backend's camelCase keys and
// numeric fields arrive as json.Number.
func (c *Client) FetchTrades(ctx context.Context, userID string) ([]ports.RawTrade, error) {
	endpoint := c.baseURL + tradesPath + "?" + url.Values{"userId": {userID}}.Encode()
	b := &backoff.Backoff{Min: c.retryMin, Max: c.retryMax, Factor: 2, Jitter: true}

	for attempt := 0; ; attempt++ {
		records, retryable, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			c.logger.Debug(ctx, "Trades fetched from REST backend", map[string]interface{}{"userID": userID, "count": len(records)})
			return records, nil
		}
		if !retryable || attempt >= c.maxRetries {
			c.logger.Error(ctx, err, "Fetching trades failed", map[string]interface{}{"userID": userID, "attempts": attempt + 1})
			return nil, err
		}

		wait := b.Duration()
		c.logger.Warn(ctx, "Retrying trade fetch", map[string]interface{}{"attempt": attempt + 1, "wait": wait.String(), "error": err.Error()})
		select {
		case <-ctx.Done():
			return nil, contextError(ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]ports.RawTrade, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build request: %w: %w", ports.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, contextError(ctxErr)
		}
		return nil, true, fmt.Errorf("GET %s: %w: %w", tradesPath, ports.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		sentinel, retryable := statusError(resp.StatusCode)
		return nil, retryable, fmt.Errorf("GET %s returned %d (%s): %w", tradesPath, resp.StatusCode, strings.TrimSpace(string(body)), sentinel)
	}

	var payload tradesResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("failed to decode trades response: %w: %w", ports.ErrInvalidResponse, err)
	}
	if payload.Error != "" {
		return nil, false, fmt.Errorf("backend error %q: %w", payload.Error, ports.ErrInvalidResponse)
	}

	records := make([]ports.RawTrade, 0, len(payload.Trades))
	for _, t := range payload.Trades {
		if t != nil {
			records = append(records, t)
		}
	}
	return records, false, nil
}

func statusError(code int) (error, bool) {
	switch {
	case code == http.StatusUnauthorized:
		return ports.ErrAuthenticationFailed, false
	case code == http.StatusForbidden:
		return ports.ErrPermissionDenied, false
	case code == http.StatusNotFound:
		return ports.ErrNotFound, false
	case code == http.StatusTooManyRequests:
		return ports.ErrRateLimited, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ports.ErrTimeout, true
	case code >= 500:
		return ports.ErrSourceUnavailable, true
	default:
		return ports.ErrInvalidRequest, false
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("trade fetch: %w: %w", ports.ErrTimeout, err)
	}
	return fmt.Errorf("trade fetch: %w: %w", ports.ErrContextCanceled, err)
}
