package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tradeJournal/config"
	"tradeJournal/internal/accounting/analytics"
	"tradeJournal/internal/accounting/descaling"
	"tradeJournal/internal/accounting/normalizer"
	"tradeJournal/internal/accounting/pnl"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

const maxConcurrentPriceFetches = 4

// TradeView is a trade annotated with its computed results.
type TradeView struct {
	domain.Trade
	PnL        domain.PnLResult
	RiskReward float64
	Unrealized *domain.UnrealizedPnL // Open trades only, when a mark price was available
}

// Dashboard is everything the journal screens display for one user.
type Dashboard struct {
	UserID        string
	Trades        []TradeView // Chronological
	Stats         domain.PortfolioStats
	UnrealizedPnL float64
	Rejected      []error // Records skipped by lenient normalization
	GeneratedAt   time.Time
}

// Options configures a JournalService.
type Options struct {
	Instruments         *config.Instruments
	StrictNormalization bool
	Prices              ports.PriceProvider // Optional, enables mark-to-market
	Writer              ports.TradeWriter   // Optional, enables recording trades
}

// JournalService runs the accounting pipeline over the trades of a source.
type JournalService struct {
	source      ports.TradeSource
	logger      ports.Logger
	prices      ports.PriceProvider
	writer      ports.TradeWriter
	instruments *config.Instruments
	strict      bool
	now         func() time.Time
}

// NewJournalService creates a new application service instance.
func NewJournalService(source ports.TradeSource, logger ports.Logger, opts Options) (*JournalService, error) {
	if source == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	instruments := opts.Instruments
	if instruments == nil {
		instruments = &config.Instruments{}
	}

	return &JournalService{
		source:      source,
		logger:      logger,
		prices:      opts.Prices,
		writer:      opts.Writer,
		instruments: instruments,
		strict:      opts.StrictNormalization,
		now:         time.Now,
	}, nil
}

// TradeOptions returns the P&L options for a trade: the instrument's unit multiplier and
// the recorded stop-loss, or the instrument default when none was recorded.
func (s *JournalService) TradeOptions(t domain.Trade) pnl.Options {
	ins := s.instruments.Lookup(t.Instrument)
	stop := t.StopLoss
	if stop == nil {
		stop = ins.StopLoss
	}
	return pnl.Options{StopLoss: stop, Multiplier: ins.Multiplier}
}

// LoadTrades fetches, normalizes and descales the trades of a user. In lenient mode
// malformed records are skipped and returned as the second value; in strict mode any
// malformed record fails the whole load.
func (s *JournalService) LoadTrades(ctx context.Context, userID string) ([]domain.Trade, []error, error) {
	raws, err := s.source.FetchTrades(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch trades: %w", err)
	}

	trades, rejected := normalizer.NormalizeAll(raws)
	if len(rejected) > 0 {
		if s.strict {
			return nil, rejected, fmt.Errorf("%d of %d trade records rejected: %w", len(rejected), len(raws), errors.Join(rejected...))
		}
		for _, rerr := range rejected {
			s.logger.Warn(ctx, "Skipping malformed trade record", map[string]interface{}{"userID": userID, "error": rerr.Error()})
		}
	}

	for i := range trades {
		trades[i] = descaling.Descale(trades[i])
	}
	s.logger.Debug(ctx, "Trades loaded", map[string]interface{}{"userID": userID, "fetched": len(raws), "accepted": len(trades)})
	return trades, rejected, nil
}

// Dashboard computes per-trade results and portfolio statistics for a user.
func (s *JournalService) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	trades, rejected, err := s.LoadTrades(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]TradeView, 0, len(trades))
	for _, t := range trades {
		opts := s.TradeOptions(t)
		views = append(views, TradeView{
			Trade:      t,
			PnL:        pnl.ComputePnL(t, opts),
			RiskReward: pnl.RiskReward(t, opts.StopLoss),
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return analytics.ChronologicalLess(views[i].Trade, views[j].Trade)
	})

	dash := &Dashboard{
		UserID:      userID,
		Trades:      views,
		Stats:       analytics.Aggregate(trades, s.TradeOptions),
		Rejected:    rejected,
		GeneratedAt: s.now().UTC(),
	}

	if s.prices != nil {
		dash.UnrealizedPnL = s.markToMarket(ctx, dash.Trades)
	}

	s.logger.Info(ctx, "Dashboard computed", map[string]interface{}{
		"userID":       userID,
		"totalTrades":  dash.Stats.TotalTrades,
		"closedTrades": dash.Stats.ClosedTrades,
		"netPnL":       dash.Stats.NetPnL,
		"winRate":      dash.Stats.WinRate,
		"rejected":     len(rejected),
	})
	return dash, nil
}

// markToMarket fills Unrealized on open trades and returns the rounded total. A failed
// price lookup leaves the affected trades without an unrealized figure.
func (s *JournalService) markToMarket(ctx context.Context, views []TradeView) float64 {
	instruments := make(map[string]struct{})
	for _, v := range views {
		if v.IsOpen() {
			instruments[v.Instrument] = struct{}{}
		}
	}
	if len(instruments) == 0 {
		return 0
	}

	var mu sync.Mutex
	marks := make(map[string]float64, len(instruments))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPriceFetches)
	for instrument := range instruments {
		g.Go(func() error {
			price, err := s.prices.GetMarkPrice(gctx, instrument)
			if err != nil {
				s.logger.Warn(gctx, "Mark price unavailable", map[string]interface{}{"instrument": instrument, "error": err.Error()})
				return nil
			}
			mu.Lock()
			marks[instrument] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var total []float64
	for i := range views {
		mark, ok := marks[views[i].Instrument]
		if !ok || !views[i].IsOpen() {
			continue
		}
		u := pnl.Unrealized(views[i].Trade, mark, s.TradeOptions(views[i].Trade))
		views[i].Unrealized = &u
		total = append(total, u.PnL)
	}
	return pnl.Sum(total)
}

// RecordTrade stores a trade through the configured writer and returns its id.
func (s *JournalService) RecordTrade(ctx context.Context, userID string, t domain.Trade) (string, error) {
	if s.writer == nil {
		return "", fmt.Errorf("trade source is read-only: %w", ports.ErrInvalidRequest)
	}
	if t.Instrument == "" || t.EntryPrice <= 0 || t.PositionSize <= 0 {
		return "", fmt.Errorf("trade needs an instrument, a positive entry price and size: %w", ports.ErrInvalidRequest)
	}
	if t.ExitPrice != nil && *t.ExitPrice <= 0 {
		return "", fmt.Errorf("exit price must be positive: %w", ports.ErrInvalidRequest)
	}
	if t.Status == "" {
		t.Status = domain.StatusOpen
	}

	id, err := s.writer.SaveTrade(ctx, userID, t)
	if err != nil {
		return "", fmt.Errorf("failed to record trade: %w", err)
	}
	s.logger.Info(ctx, "Trade recorded", map[string]interface{}{"userID": userID, "tradeID": id, "instrument": t.Instrument})
	return id, nil
}

// DeleteTrade removes a trade through the configured writer.
func (s *JournalService) DeleteTrade(ctx context.Context, userID, tradeID string) error {
	if s.writer == nil {
		return fmt.Errorf("trade source is read-only: %w", ports.ErrInvalidRequest)
	}
	if err := s.writer.DeleteTrade(ctx, userID, tradeID); err != nil {
		return fmt.Errorf("failed to delete trade %s: %w", tradeID, err)
	}
	s.logger.Info(ctx, "Trade deleted", map[string]interface{}{"userID": userID, "tradeID": tradeID})
	return nil
}
