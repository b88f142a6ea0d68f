package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradeJournal/internal/accounting/descaling"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/id"
	"tradeJournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository is the local journal file. It implements ports.TradeSource and ports.TradeWriter.
// Rows use the snake_case column names of the hosted row store, so the records it returns go
// through the same normalization path as every other source.
type Repository struct {
	db             *sql.DB
	logger         ports.Logger
	precisionLimit float64
	now            func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
	// PrecisionLimit is the first price the price columns are treated as unable to hold.
	// Prices at or above it are scaled down on write. Defaults to descaling.DefaultPrecisionLimit.
	PrecisionLimit float64
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/journal.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite journal opened", map[string]interface{}{"path": dbPath})

	limit := cfg.PrecisionLimit
	if limit <= 0 {
		limit = descaling.DefaultPrecisionLimit
	}
	repo := &Repository{db: db, logger: cfg.Logger, precisionLimit: limit, now: time.Now}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		trade_pair TEXT NOT NULL,
		trade_type TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		lot_size REAL NOT NULL,
		status TEXT NOT NULL,
		notes TEXT DEFAULT NULL,
		stop_loss REAL DEFAULT NULL,
		take_profit REAL DEFAULT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_user_created ON trades (user_id, created_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite journal")
		return r.db.Close()
	}
	return nil
}

// --- TradeWriter Implementation ---

// SaveTrade inserts or replaces a trade. Prices the columns cannot hold are scaled down and
// annotated in the notes; readers undo this with descaling.Descale.
func (r *Repository) SaveTrade(ctx context.Context, userID string, trade domain.Trade) (string, error) {
	now := r.now().UTC()
	if trade.ID == "" {
		trade.ID = id.NewAt(now)
	}
	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = now
	}
	trade.UpdatedAt = now

	stored, factor := descaling.ScaleToFit(trade, r.precisionLimit)
	if factor > 1 {
		r.logger.Info(ctx, "Trade prices scaled for storage", map[string]interface{}{"tradeID": trade.ID, "factor": factor})
	}

	const query = `
	INSERT INTO trades (id, user_id, trade_pair, trade_type, entry_price, exit_price, lot_size,
	                    status, notes, stop_loss, take_profit, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		trade_pair = excluded.trade_pair, trade_type = excluded.trade_type,
		entry_price = excluded.entry_price, exit_price = excluded.exit_price,
		lot_size = excluded.lot_size, status = excluded.status, notes = excluded.notes,
		stop_loss = excluded.stop_loss, take_profit = excluded.take_profit,
		updated_at = excluded.updated_at
	WHERE trades.user_id = excluded.user_id`

	result, err := r.db.ExecContext(ctx, query,
		stored.ID, userID, stored.Instrument, sideName(stored.Direction), stored.EntryPrice,
		nullFloat(stored.ExitPrice), stored.PositionSize, string(stored.Status), nullString(stored.Notes),
		nullFloat(stored.StopLoss), nullFloat(stored.TakeProfit), stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save trade %s: %w: %w", stored.ID, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected for trade %s: %w", stored.ID, err)
	}
	if rowsAffected == 0 {
		return "", fmt.Errorf("trade %s belongs to another user: %w", stored.ID, ports.ErrPermissionDenied)
	}

	r.logger.Debug(ctx, "Trade saved", map[string]interface{}{"tradeID": stored.ID, "instrument": stored.Instrument})
	return stored.ID, nil
}

// DeleteTrade removes a trade belonging to userID.
func (r *Repository) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, tradeID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trade %s: %w: %w", tradeID, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade %s: %w", tradeID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade %s not found for delete: %w", tradeID, ports.ErrNotFound)
	}
	return nil
}

// --- TradeSource Implementation ---

const selectColumns = `
	SELECT id, trade_pair, trade_type, entry_price, exit_price, lot_size, status,
	       notes, stop_loss, take_profit, created_at, updated_at
	FROM trades`

// FetchTrades returns the stored rows of a user, scaled prices and markers included.
func (r *Repository) FetchTrades(ctx context.Context, userID string) ([]ports.RawTrade, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for user %s: %w: %w", userID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	records := make([]ports.RawTrade, 0)
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	r.logger.Debug(ctx, "Trades fetched from SQLite journal", map[string]interface{}{"userID": userID, "count": len(records)})
	return records, nil
}

// GetTrade retrieves a single stored row.
func (r *Repository) GetTrade(ctx context.Context, userID, tradeID string) (ports.RawTrade, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ? AND user_id = ?`, tradeID, userID)
	rec, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query trade %s: %w: %w", tradeID, ports.ErrQueryFailed, err)
	}
	return rec, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a raw record keyed by column name. NULL columns become nil.
func scanTrade(s scanner) (ports.RawTrade, error) {
	var (
		tradeID, pair, side, status string
		entry, size                 float64
		exit, stopLoss, takeProfit  sql.NullFloat64
		notes                       sql.NullString
		createdAt, updatedAt        time.Time
	)
	err := s.Scan(&tradeID, &pair, &side, &entry, &exit, &size, &status,
		&notes, &stopLoss, &takeProfit, &createdAt, &updatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	return ports.RawTrade{
		"id":          tradeID,
		"trade_pair":  pair,
		"trade_type":  side,
		"entry_price": entry,
		"exit_price":  nullable(exit),
		"lot_size":    size,
		"status":      status,
		"notes":       nullableString(notes),
		"stop_loss":   nullable(stopLoss),
		"take_profit": nullable(takeProfit),
		"created_at":  createdAt,
		"updated_at":  updatedAt,
	}, nil
}

// sideName stores the direction with the buy/sell spelling of the hosted row store.
func sideName(d domain.Direction) string {
	if d == domain.Short {
		return "sell"
	}
	return "buy"
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullable(v sql.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func nullableString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
