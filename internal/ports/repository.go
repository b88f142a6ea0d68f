package ports

import (
	"context"

	"tradeJournal/internal/domain"
)

// RawTrade is a trade record as delivered by a data source, before normalization.
// Keys follow whichever naming convention the source uses (snake_case rows or camelCase JSON).
type RawTrade = map[string]any

// TradeSource defines the interface for fetching a user's raw trade records.
// Implementations: the Postgres row store, the REST backend client and the local sqlite journal.
type TradeSource interface {
	// FetchTrades returns every trade record belonging to userID.
	// The order of the returned records is unspecified.
	FetchTrades(ctx context.Context, userID string) ([]RawTrade, error)
}

// TradeWriter defines the write path for journal entries.
type TradeWriter interface {
	// SaveTrade inserts or replaces a trade and returns its ID.
	// A trade without an ID gets a new one assigned.
	SaveTrade(ctx context.Context, userID string, trade domain.Trade) (string, error)
	// DeleteTrade removes a trade. Returns ErrNotFound if it does not exist.
	DeleteTrade(ctx context.Context, userID, tradeID string) error
}
