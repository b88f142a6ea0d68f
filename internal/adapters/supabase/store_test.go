package supabase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"tradeJournal/internal/accounting/descaling"
	"tradeJournal/internal/accounting/normalizer"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Dialector: sqlite.Open(filepath.Join(t.TempDir(), "rows.db")),
		Logger:    &mockLogger{},
		Migrate:   true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(Config{DSN: "postgres://localhost/db"})
	assert.Error(t, err, "logger is required")

	_, err = Open(Config{Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestStore_FetchTrades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 2, 10, 14, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx,
		TradeRow{
			ID: "r-1", UserID: "alice", TradePair: "BTCUSD", TradeType: "sell",
			EntryPrice: 6.5, ExitPrice: domain.Float(6.25), LotSize: 0.1, Status: "closed",
			Notes: domain.String("[SCALED_x10000]"), CreatedAt: created, UpdatedAt: created,
		},
		TradeRow{
			ID: "r-2", UserID: "alice", TradePair: "EURUSD", TradeType: "buy",
			EntryPrice: 1.0801, LotSize: 2, Status: "open",
			CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour),
		},
		TradeRow{
			ID: "r-3", UserID: "bob", TradePair: "EURUSD", TradeType: "buy",
			EntryPrice: 1.07, LotSize: 1, Status: "open", CreatedAt: created, UpdatedAt: created,
		},
	))

	records, err := store.FetchTrades(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "r-1", records[0]["id"])
	assert.Nil(t, records[1]["exit_price"])
	assert.Nil(t, records[1]["notes"])

	trade, err := normalizer.Normalize(records[0])
	require.NoError(t, err)
	trade = descaling.Descale(trade)
	assert.Equal(t, domain.Short, trade.Direction)
	assert.Equal(t, 65000.0, trade.EntryPrice)
	assert.Equal(t, 62500.0, *trade.ExitPrice)
	assert.Nil(t, trade.Notes)
	assert.True(t, created.Equal(trade.CreatedAt))
}

func TestStore_InsertDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	row := TradeRow{ID: "dup", UserID: "alice", TradePair: "X", TradeType: "buy", EntryPrice: 1, LotSize: 1, Status: "open"}

	require.NoError(t, store.Insert(ctx, row))
	assert.Error(t, store.Insert(ctx, row))
}
