package ports

import "context"

// PriceProvider supplies current prices used to mark open trades to market.
type PriceProvider interface {
	// GetMarkPrice retrieves the current mark price for a given symbol.
	GetMarkPrice(ctx context.Context, symbol string) (float64, error)

	// Ping checks the connectivity to the price source.
	Ping(ctx context.Context) error
}
