package analytics

import (
	"cmp"
	"sort"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/accounting/pnl"
	"tradeJournal/internal/domain"
)

// OptionsFunc supplies the caller-side P&L options (stop-loss, unit multiplier) for a trade.
type OptionsFunc func(t domain.Trade) pnl.Options

// RecordedStopLoss uses the stop-loss stored with each trade and a multiplier of 1.
func RecordedStopLoss(t domain.Trade) pnl.Options {
	return pnl.Options{StopLoss: t.StopLoss}
}

// ChronologicalLess orders trades by creation time, then ID. Records that tie on both (no ID,
// no timestamp) fall back to their contents, so every permutation of the same trades sorts
// the same way.
func ChronologicalLess(a, b domain.Trade) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if c := cmp.Or(
		cmp.Compare(a.ID, b.ID),
		cmp.Compare(a.Instrument, b.Instrument),
		cmp.Compare(a.Direction, b.Direction),
		cmp.Compare(a.EntryPrice, b.EntryPrice),
		compareOptional(a.ExitPrice, b.ExitPrice),
		cmp.Compare(a.PositionSize, b.PositionSize),
		compareOptional(a.StopLoss, b.StopLoss),
	); c != 0 {
		return c < 0
	}
	return a.UpdatedAt.Before(b.UpdatedAt)
}

// compareOptional sorts absent values first.
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Compare(*a, *b)
}

// Aggregate reduces normalized, descaled trades into portfolio statistics.
// Only closed trades contribute to P&L figures. The input order does not matter: closed trades
// are sorted with ChronologicalLess before the equity curve is built, and the caller's slice
// is left untouched. A nil opts uses zero Options for every trade.
func Aggregate(trades []domain.Trade, opts OptionsFunc) domain.PortfolioStats {
	stats := domain.PortfolioStats{
		TotalTrades: len(trades),
		EquityCurve: make([]domain.EquityPoint, 0),
		MonthlyPnL:  make(map[string]float64),
	}
	if opts == nil {
		opts = func(domain.Trade) pnl.Options { return pnl.Options{} }
	}

	closed := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		switch t.Status {
		case domain.StatusClosed:
			closed = append(closed, t)
		case domain.StatusOpen:
			stats.OpenTrades++
		case domain.StatusCancelled:
			stats.CancelledTrades++
		}
	}
	stats.ClosedTrades = len(closed)
	if len(closed) == 0 {
		return stats
	}

	sort.SliceStable(closed, func(i, j int) bool {
		return ChronologicalLess(closed[i], closed[j])
	})

	var profit, loss, cumulative, peak, maxDrawdown decimal.Decimal
	var best, worst, rrSum decimal.Decimal
	monthly := make(map[string]decimal.Decimal)

	for i, t := range closed {
		o := opts(t)
		res := pnl.ComputePnL(t, o)
		value := decimal.NewFromFloat(res.PnL)

		switch res.Result {
		case domain.ResultWin:
			stats.WinningTrades++
			profit = profit.Add(value)
		case domain.ResultLoss:
			stats.LosingTrades++
			loss = loss.Add(value.Abs())
		case domain.ResultBreakeven:
			stats.BreakevenTrades++
		}

		if i == 0 || value.GreaterThan(best) {
			best = value
		}
		if i == 0 || value.LessThan(worst) {
			worst = value
		}

		rrSum = rrSum.Add(decimal.NewFromFloat(pnl.RiskReward(t, o.StopLoss)))

		cumulative = cumulative.Add(value)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(maxDrawdown) {
			maxDrawdown = dd
		}

		month := t.CreatedAt.UTC().Format("2006-01")
		monthly[month] = monthly[month].Add(value)

		stats.EquityCurve = append(stats.EquityCurve, domain.EquityPoint{
			TradeIndex:    i + 1,
			TradeID:       t.ID,
			CumulativePnL: cumulative.InexactFloat64(),
			Timestamp:     t.CreatedAt,
		})
	}

	n := decimal.NewFromInt(int64(len(closed)))
	stats.WinRate = float64(stats.WinningTrades) / float64(stats.ClosedTrades) * 100
	stats.TotalProfit = profit.InexactFloat64()
	stats.TotalLoss = loss.InexactFloat64()
	stats.NetPnL = profit.Sub(loss).InexactFloat64()
	stats.BestTrade = best.InexactFloat64()
	stats.WorstTrade = worst.InexactFloat64()
	stats.AverageRiskReward = rrSum.Div(n).InexactFloat64()
	stats.MaxDrawdown = maxDrawdown.InexactFloat64()

	if loss.IsPositive() {
		stats.ProfitFactor = profit.Div(loss).InexactFloat64()
	}
	if stats.WinningTrades > 0 {
		stats.AverageWin = profit.Div(decimal.NewFromInt(int64(stats.WinningTrades))).InexactFloat64()
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = loss.Neg().Div(decimal.NewFromInt(int64(stats.LosingTrades))).InexactFloat64()
	}
	for month, v := range monthly {
		stats.MonthlyPnL[month] = v.InexactFloat64()
	}

	return stats
}
