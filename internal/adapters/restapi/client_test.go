package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:    server.URL + "/",
		Token:      "secret",
		MaxRetries: 2,
		RetryMin:   time.Millisecond,
		RetryMax:   2 * time.Millisecond,
		Logger:     &mockLogger{},
	})
	require.NoError(t, err)
	return client
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost"})
	assert.Error(t, err, "logger is required")

	_, err = New(Config{Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = New(Config{BaseURL: "not a url", Logger: &mockLogger{}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestClient_FetchTrades(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/trades", r.URL.Path)
		assert.Equal(t, "user-42", r.URL.Query().Get("userId"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"trades": []map[string]any{
				{
					"id": "t1", "tradePair": "EURUSD", "tradeType": "buy",
					"entryPrice": "1.08000", "exitPrice": "1.08500", "lotSize": 1,
					"status": "closed", "stopLoss": nil, "createdAt": "2024-01-01T10:00:00Z",
				},
			},
		})
	})

	records, err := client.FetchTrades(context.Background(), "user-42")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, json.Number("1"), records[0]["lotSize"])

	trade, err := normalizer.Normalize(records[0])
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", trade.Instrument)
	assert.Equal(t, domain.Long, trade.Direction)
	assert.Equal(t, 1.085, *trade.ExitPrice)
	assert.Nil(t, trade.StopLoss)
}

func TestClient_FetchTrades_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trades":null}`))
	})

	records, err := client.FetchTrades(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_FetchTrades_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantErr  error
		attempts int32
	}{
		{"unauthorized", http.StatusUnauthorized, ports.ErrAuthenticationFailed, 1},
		{"forbidden", http.StatusForbidden, ports.ErrPermissionDenied, 1},
		{"bad request", http.StatusBadRequest, ports.ErrInvalidRequest, 1},
		{"rate limited retries", http.StatusTooManyRequests, ports.ErrRateLimited, 3},
		{"server error retries", http.StatusBadGateway, ports.ErrSourceUnavailable, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				http.Error(w, "nope", tt.status)
			})

			_, err := client.FetchTrades(context.Background(), "u")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.attempts, atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_FetchTrades_RecoversAfterRetry(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"trades":[{"id":"t1"}]}`))
	})

	records, err := client.FetchTrades(context.Background(), "u")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_FetchTrades_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})

	_, err := client.FetchTrades(context.Background(), "u")
	assert.ErrorIs(t, err, ports.ErrInvalidResponse)
}

func TestClient_FetchTrades_Canceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trades":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchTrades(ctx, "u")
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}
