package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// journalFactory returns a factory over a sqlite journal in dir, remembering the flags
// of the last run.
func journalFactory(t *testing.T, dbPath string, seen *GlobalFlags) EnvFactory {
	t.Helper()
	inst, err := config.ParseInstruments([]byte("instruments:\n  GBPUSD:\n    multiplier: 10\n"))
	require.NoError(t, err)

	return func(ctx context.Context, flags GlobalFlags) (*Env, error) {
		*seen = flags
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: dbPath, Logger: &mockLogger{}})
		if err != nil {
			return nil, err
		}
		svc, err := app.NewJournalService(repo, &mockLogger{}, app.Options{
			Instruments:         inst,
			StrictNormalization: flags.Strict,
			Writer:              repo,
		})
		if err != nil {
			return nil, err
		}
		user := "local"
		if flags.UserID != "" {
			user = flags.UserID
		}
		return &Env{Service: svc, UserID: user, Close: repo.Close}, nil
	}
}

func run(t *testing.T, factory EnvFactory, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(factory)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_RecordStatsTrades(t *testing.T) {
	var flags GlobalFlags
	factory := journalFactory(t, filepath.Join(t.TempDir(), "journal.db"), &flags)

	trades := [][]string{
		{"record", "--instrument", "EURUSD", "--side", "buy", "--entry", "1.1", "--exit", "1.15", "--size", "1", "--status", "closed", "--stop-loss", "1.09"},
		{"record", "--instrument", "GBPUSD", "--side", "sell", "--entry", "1.3", "--exit", "1.325", "--size", "1", "--status", "closed"},
		{"record", "--instrument", "BTCUSD", "--side", "short", "--entry", "123456.78", "--exit", "123356.78", "--size", "0.05", "--status", "closed", "--notes", "news fade"},
		{"record", "--instrument", "ETHUSD", "--side", "long", "--entry", "3000", "--size", "1"},
	}
	for _, args := range trades {
		out, err := run(t, factory, args...)
		require.NoError(t, err, out)
		assert.Len(t, strings.TrimSpace(out), 26, "a ULID is printed")
	}

	out, err := run(t, factory, "stats", "--json")
	require.NoError(t, err)
	var stats domain.PortfolioStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 4, stats.TotalTrades)
	assert.Equal(t, 3, stats.ClosedTrades)
	assert.Equal(t, 1, stats.OpenTrades)
	assert.Equal(t, 4.8, stats.NetPnL)
	assert.Equal(t, 2, stats.WinningTrades)

	out, err = run(t, factory, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Net P&L")
	assert.Contains(t, out, "4.80")
	assert.Contains(t, out, "66.7%")

	out, err = run(t, factory, "trades", "--status", "open")
	require.NoError(t, err)
	assert.Contains(t, out, "ETHUSD")
	assert.NotContains(t, out, "EURUSD")

	out, err = run(t, factory, "trades")
	require.NoError(t, err)
	assert.Contains(t, out, "123456.78", "large prices are shown descaled")
	assert.NotContains(t, out, "SCALED")
}

func TestCLI_Export(t *testing.T) {
	var flags GlobalFlags
	factory := journalFactory(t, filepath.Join(t.TempDir(), "journal.db"), &flags)
	_, err := run(t, factory, "record", "-i", "EURUSD", "-s", "buy", "--entry", "1.1", "--exit", "1.2", "--size", "1", "--status", "closed")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "exports")
	out, err := run(t, factory, "export", "--dir", dir, "--user", "local")
	require.NoError(t, err)
	assert.Equal(t, "local", flags.UserID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Contains(t, out, e.Name())
	}
}

func TestCLI_Errors(t *testing.T) {
	var flags GlobalFlags
	factory := journalFactory(t, filepath.Join(t.TempDir(), "journal.db"), &flags)

	_, err := run(t, factory, "record", "-i", "EURUSD", "-s", "hold", "--entry", "1", "--size", "1")
	assert.ErrorContains(t, err, "unknown side")

	_, err = run(t, factory, "record", "-i", "EURUSD", "-s", "buy", "--entry", "1")
	assert.Error(t, err, "size is required")

	_, err = run(t, factory, "trades", "--status", "pending")
	assert.ErrorContains(t, err, "unknown status")

	_, err = run(t, factory, "delete", "missing-id")
	assert.Error(t, err)

	_, err = run(t, factory, "stats", "--strict")
	require.NoError(t, err)
	assert.True(t, flags.Strict)
}

func TestCLI_FactoryFailure(t *testing.T) {
	factory := func(ctx context.Context, flags GlobalFlags) (*Env, error) {
		return nil, assert.AnError
	}
	_, err := run(t, factory, "stats")
	assert.ErrorIs(t, err, assert.AnError)
}
