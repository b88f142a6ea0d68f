package binanceclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/ports"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL: server.URL,
		Symbols: map[string]string{"xau/usd": "paxgusdt"},
		Logger:  &mockLogger{},
	})
	require.NoError(t, err)
	return client
}

func TestNew_RequiresLogger(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestClient_Symbol(t *testing.T) {
	client, err := New(Config{Symbols: map[string]string{"XAUUSD": "PAXGUSDT"}, Logger: &mockLogger{}})
	require.NoError(t, err)

	tests := []struct {
		instrument string
		want       string
	}{
		{"BTCUSD", "BTCUSDT"},
		{"btc/usd", "BTCUSDT"},
		{"ETH-USDT", "ETHUSDT"},
		{"XAU/USD", "PAXGUSDT"},
		{"ETHBTC", "ETHBTC"},
	}
	for _, tt := range tests {
		t.Run(tt.instrument, func(t *testing.T) {
			assert.Equal(t, tt.want, client.Symbol(tt.instrument))
		})
	}
}

func TestClient_GetMarkPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/premiumIndex", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"BTCUSDT","markPrice":"65000.50","indexPrice":"64990.00","lastFundingRate":"0.0001","nextFundingTime":1700000000000,"time":1700000000000}`))
	})

	price, err := client.GetMarkPrice(context.Background(), "BTC/USD")
	require.NoError(t, err)
	assert.Equal(t, 65000.50, price)
}

func TestClient_GetMarkPrice_InvalidSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	})

	_, err := client.GetMarkPrice(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ping", r.URL.Path)
		w.Write([]byte(`{}`))
	})

	assert.NoError(t, client.Ping(context.Background()))
}
