package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tradeJournal/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	defaultQuoteAsset = "USDT"
)

// Client implements ports.PriceProvider using the Binance USD-M futures mark price.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	quoteAsset    string
	symbols       map[string]string // journal instrument -> exchange symbol
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	BaseURL    string // Overrides the production/testnet URL when set
	QuoteAsset string // Appended to fiat-quoted instruments, defaults to USDT
	Symbols    map[string]string
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		// Mark prices are public; keys are only needed for rate limit headroom.
		cfg.Logger.Debug(context.Background(), "Binance client running without API keys")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance price client configured", map[string]interface{}{"baseURL": client.BaseURL})

	quote := strings.ToUpper(cfg.QuoteAsset)
	if quote == "" {
		quote = defaultQuoteAsset
	}

	symbols := make(map[string]string, len(cfg.Symbols))
	for instrument, symbol := range cfg.Symbols {
		symbols[normalizeInstrument(instrument)] = strings.ToUpper(symbol)
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		quoteAsset:    quote,
		symbols:       symbols,
	}, nil
}

// Symbol maps a journal instrument such as "BTC/USD" to an exchange symbol such as "BTCUSDT".
// Explicit mappings from the config win over the derived name.
func (c *Client) Symbol(instrument string) string {
	key := normalizeInstrument(instrument)

	if symbol, ok := c.symbols[key]; ok {
		return symbol
	}

	switch {
	case strings.HasSuffix(key, c.quoteAsset):
		return key
	case strings.HasSuffix(key, "USD"):
		return strings.TrimSuffix(key, "USD") + c.quoteAsset
	default:
		return key
	}
}

func normalizeInstrument(instrument string) string {
	replacer := strings.NewReplacer("/", "", "-", "", "_", "", " ", "")
	return strings.ToUpper(replacer.Replace(strings.TrimSpace(instrument)))
}

// handleError maps exchange failures onto the port error sentinels and logs them.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Signature or API key rejected
			mappedErr = ports.ErrAuthenticationFailed
		case -1121: // Invalid symbol
			mappedErr = ports.ErrNotFound
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1125, -1127, -1128, -1130:
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Network, context cancellation and parsing errors
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// GetMarkPrice retrieves the current mark price for a journal instrument.
func (c *Client) GetMarkPrice(ctx context.Context, instrument string) (float64, error) {
	op := "GetMarkPrice"
	symbol := c.Symbol(instrument)

	indexes, err := c.futuresClient.NewPremiumIndexService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(indexes) == 0 {
		return 0, c.handleError(ctx, fmt.Errorf("no price data returned for symbol %s: %w", symbol, ports.ErrInvalidResponse), op)
	}

	price, err := strconv.ParseFloat(indexes[0].MarkPrice, 64)
	if err != nil {
		return 0, c.handleError(ctx, fmt.Errorf("could not parse price '%s': %w", indexes[0].MarkPrice, err), op)
	}
	c.logger.Debug(ctx, "Mark price fetched", map[string]interface{}{"instrument": instrument, "symbol": symbol, "price": price})
	return price, nil
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}
