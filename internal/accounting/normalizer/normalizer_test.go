package normalizer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

func TestNormalize_ShapeA(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	raw := map[string]any{
		"id":          "a-1",
		"trade_pair":  "EURUSD",
		"trade_type":  "buy",
		"entry_price": 1.085,
		"exit_price":  1.09,
		"lot_size":    10.0,
		"status":      "closed",
		"notes":       "breakout",
		"stop_loss":   1.08,
		"created_at":  created,
		"updated_at":  "2024-03-01T12:00:00Z",
	}

	trade, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "a-1", trade.ID)
	assert.Equal(t, "EURUSD", trade.Instrument)
	assert.Equal(t, domain.Long, trade.Direction)
	assert.Equal(t, 1.085, trade.EntryPrice)
	require.NotNil(t, trade.ExitPrice)
	assert.Equal(t, 1.09, *trade.ExitPrice)
	assert.Equal(t, 10.0, trade.PositionSize)
	assert.Equal(t, domain.StatusClosed, trade.Status)
	require.NotNil(t, trade.Notes)
	assert.Equal(t, "breakout", *trade.Notes)
	require.NotNil(t, trade.StopLoss)
	assert.Equal(t, 1.08, *trade.StopLoss)
	assert.Nil(t, trade.TakeProfit)
	assert.True(t, trade.CreatedAt.Equal(created))
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), trade.UpdatedAt)
}

func TestNormalize_ShapeB(t *testing.T) {
	var raw map[string]any
	body := `{"id":"b-7","tradePair":"BTCUSDT","tradeType":"sell","entryPrice":"64000.5","lotSize":0.25,"status":"open","createdAt":"2024-05-02T08:00:00.123Z"}`
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	trade, err := Normalize(raw)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", trade.Instrument)
	assert.Equal(t, domain.Short, trade.Direction)
	assert.Equal(t, 64000.5, trade.EntryPrice)
	assert.Equal(t, 0.25, trade.PositionSize)
	assert.Equal(t, domain.StatusOpen, trade.Status)
	assert.Nil(t, trade.ExitPrice, "missing exit price must stay absent, not zero")
	assert.Nil(t, trade.Notes)
	assert.Equal(t, 123*time.Millisecond, time.Duration(trade.CreatedAt.Nanosecond()))
}

func TestNormalize_EpochMillis(t *testing.T) {
	var raw map[string]any
	body := `{"id":"b-8","tradePair":"ETHUSDT","tradeType":"buy","entryPrice":3000,"lotSize":1,"createdAt":1714636800000,"updatedAt":1714640400000.0}`
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	trade, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1714636800000).UTC(), trade.CreatedAt)
	assert.Equal(t, time.UnixMilli(1714640400000).UTC(), trade.UpdatedAt)

	raw["createdAt"] = 1714636800000
	trade, err = Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1714636800000).UTC(), trade.CreatedAt)
}

func TestNormalize_ResolutionOrder(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		wantSize float64
	}{
		{
			name:     "shape A wins over shape B",
			raw:      map[string]any{"trade_pair": "X", "trade_type": "long", "entry_price": 1.0, "lot_size": 1.0, "lotSize": 2.0, "positionSize": 3.0},
			wantSize: 1.0,
		},
		{
			name:     "null shape A falls through to shape B",
			raw:      map[string]any{"trade_pair": "X", "trade_type": "long", "entry_price": 1.0, "lot_size": nil, "lotSize": 2.0},
			wantSize: 2.0,
		},
		{
			name:     "positionSize before position_size",
			raw:      map[string]any{"trade_pair": "X", "trade_type": "long", "entry_price": 1.0, "positionSize": 3.0, "position_size": 4.0},
			wantSize: 3.0,
		},
		{
			name:     "secondary alias as last resort",
			raw:      map[string]any{"trade_pair": "X", "trade_type": "long", "entry_price": 1.0, "position_size": 4.0},
			wantSize: 4.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, trade.PositionSize)
		})
	}
}

func TestNormalize_Direction(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Direction
	}{
		{"buy", domain.Long},
		{"BUY", domain.Long},
		{"long", domain.Long},
		{" Long ", domain.Long},
		{"sell", domain.Short},
		{"short", domain.Short},
		{"SHORT", domain.Short},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			trade, err := Normalize(map[string]any{
				"tradePair": "ETHUSDT", "tradeType": tt.input, "entryPrice": 3000.0, "lotSize": 1.0,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, trade.Direction)
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"id": "m-1", "trade_pair": "EURUSD", "trade_type": "buy", "entry_price": 1.1, "lot_size": 1.0,
		}
	}

	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{"missing instrument", func(r map[string]any) { delete(r, "trade_pair") }, FieldInstrument},
		{"blank instrument", func(r map[string]any) { r["trade_pair"] = "  " }, FieldInstrument},
		{"missing direction", func(r map[string]any) { delete(r, "trade_type") }, FieldDirection},
		{"unknown direction", func(r map[string]any) { r["trade_type"] = "hold" }, FieldDirection},
		{"missing entry price", func(r map[string]any) { delete(r, "entry_price") }, FieldEntryPrice},
		{"null entry price", func(r map[string]any) { r["entry_price"] = nil }, FieldEntryPrice},
		{"garbage entry price", func(r map[string]any) { r["entry_price"] = "abc" }, FieldEntryPrice},
		{"negative entry price", func(r map[string]any) { r["entry_price"] = -1.0 }, FieldEntryPrice},
		{"missing position size", func(r map[string]any) { delete(r, "lot_size") }, FieldPositionSize},
		{"garbage exit price", func(r map[string]any) { r["exit_price"] = true }, FieldExitPrice},
		{"unknown status", func(r map[string]any) { r["status"] = "archived" }, FieldStatus},
		{"bad timestamp", func(r map[string]any) { r["created_at"] = "yesterday" }, FieldCreatedAt},
		{"bad epoch millis", func(r map[string]any) { r["created_at"] = json.Number("soon") }, FieldCreatedAt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base()
			tt.mutate(raw)

			_, err := Normalize(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ports.ErrMalformedTrade))

			var mErr *MalformedTradeError
			require.ErrorAs(t, err, &mErr)
			assert.Equal(t, tt.wantField, mErr.Field)
			assert.Equal(t, "m-1", mErr.RecordID)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestNormalize_DegenerateValuesAreNotErrors(t *testing.T) {
	trade, err := Normalize(map[string]any{
		"trade_pair": "EURUSD", "trade_type": "buy", "entry_price": 0.0, "lot_size": 0,
	})
	require.NoError(t, err)
	assert.Zero(t, trade.EntryPrice)
	assert.Zero(t, trade.PositionSize)
	assert.Equal(t, domain.StatusOpen, trade.Status, "status defaults to open")
}

func TestNormalizeAll(t *testing.T) {
	raws := []map[string]any{
		{"id": "1", "trade_pair": "EURUSD", "trade_type": "buy", "entry_price": 1.1, "lot_size": 1.0},
		{"id": "2", "trade_pair": "EURUSD", "entry_price": 1.1, "lot_size": 1.0},
		{"id": 3, "tradePair": "GBPUSD", "tradeType": "sell", "entryPrice": 1.25, "lotSize": 2.0},
	}

	trades, errs := NormalizeAll(raws)

	require.Len(t, trades, 2)
	assert.Equal(t, "1", trades[0].ID)
	assert.Equal(t, "3", trades[1].ID)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ports.ErrMalformedTrade)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"trade_pair": "EURUSD", "trade_type": "buy", "entry_price": "1.1", "lot_size": "2"}
	_, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, "1.1", raw["entry_price"])
	assert.Len(t, raw, 4)
}
