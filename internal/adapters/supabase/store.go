// Package supabase reads journal rows from the hosted Postgres row store.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tradeJournal/internal/ports"
)

// TradeRow mirrors the hosted "trades" table. Prices live in numeric(10,5) columns, which is
// why prices of 100000 and above were scaled down by the write path.
type TradeRow struct {
	ID         string   `gorm:"primaryKey;type:text"`
	UserID     string   `gorm:"type:text;index;not null"`
	TradePair  string   `gorm:"type:text;not null"`
	TradeType  string   `gorm:"type:text;not null"`
	EntryPrice float64  `gorm:"type:numeric(10,5);not null"`
	ExitPrice  *float64 `gorm:"type:numeric(10,5)"`
	LotSize    float64  `gorm:"type:numeric(18,8);not null"`
	Status     string   `gorm:"type:text;not null;default:'open'"`
	Notes      *string  `gorm:"type:text"`
	StopLoss   *float64 `gorm:"type:numeric(18,8)"`
	TakeProfit *float64 `gorm:"type:numeric(18,8)"`
	ChartURL   *string  `gorm:"type:text"` // screenshot URL or data URI, never inspected
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName pins the table name used by the hosted schema.
func (TradeRow) TableName() string {
	return "trades"
}

// Store implements ports.TradeSource over gorm.
type Store struct {
	db     *gorm.DB
	logger ports.Logger
}

// Config holds configuration for the row store.
type Config struct {
	DSN       string         // Postgres connection string, used when Dialector is nil
	Dialector gorm.Dialector // Overrides DSN (tests use the sqlite dialector)
	Logger    ports.Logger
	Migrate   bool // Create the trades table if missing
}

// Open connects to the row store.
func Open(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for row store")
	}
	dialector := cfg.Dialector
	if dialector == nil {
		if cfg.DSN == "" {
			return nil, fmt.Errorf("row store DSN is empty: %w", ports.ErrConfigurationError)
		}
		dialector = postgres.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		err = fmt.Errorf("failed to connect to row store: %w: %w", ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "Row store initialization failed")
		return nil, err
	}

	if cfg.Migrate {
		if err := db.AutoMigrate(&TradeRow{}); err != nil {
			return nil, fmt.Errorf("failed to migrate trades table: %w", err)
		}
	}

	cfg.Logger.Info(context.Background(), "Row store connected", map[string]interface{}{"dialect": dialector.Name()})
	return &Store{db: db, logger: cfg.Logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Insert writes rows as-is. The application write path lives elsewhere; this exists for
// seeding and migrations.
func (s *Store) Insert(ctx context.Context, rows ...TradeRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to insert trades: %w: %w", ports.ErrDuplicateEntry, err)
		}
		return fmt.Errorf("failed to insert trades: %w: %w", ports.ErrUpdateFailed, err)
	}
	return nil
}

// FetchTrades returns the rows of a user as raw records with the table's snake_case keys.
func (s *Store) FetchTrades(ctx context.Context, userID string) ([]ports.RawTrade, error) {
	var rows []TradeRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for user %s: %w: %w", userID, ports.ErrQueryFailed, err)
	}

	records := make([]ports.RawTrade, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.raw())
	}
	s.logger.Debug(ctx, "Trades fetched from row store", map[string]interface{}{"userID": userID, "count": len(records)})
	return records, nil
}

func (r TradeRow) raw() ports.RawTrade {
	rec := ports.RawTrade{
		"id":          r.ID,
		"trade_pair":  r.TradePair,
		"trade_type":  r.TradeType,
		"entry_price": r.EntryPrice,
		"exit_price":  nil,
		"lot_size":    r.LotSize,
		"status":      r.Status,
		"notes":       nil,
		"stop_loss":   nil,
		"take_profit": nil,
		"created_at":  r.CreatedAt,
		"updated_at":  r.UpdatedAt,
	}
	if r.ExitPrice != nil {
		rec["exit_price"] = *r.ExitPrice
	}
	if r.Notes != nil {
		rec["notes"] = *r.Notes
	}
	if r.StopLoss != nil {
		rec["stop_loss"] = *r.StopLoss
	}
	if r.TakeProfit != nil {
		rec["take_profit"] = *r.TakeProfit
	}
	return rec
}
