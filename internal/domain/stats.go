package domain

import (
	"sort"
	"time"
)

// PortfolioStats is the derived summary of a collection of trades.
// It is recomputed on every aggregation and never persisted.
type PortfolioStats struct {
	TotalTrades     int
	ClosedTrades    int
	OpenTrades      int
	CancelledTrades int
	WinningTrades   int
	LosingTrades    int
	BreakevenTrades int

	WinRate     float64 // Percentage (0-100) of closed trades with positive P&L
	NetPnL      float64 // TotalProfit - TotalLoss
	TotalProfit float64 // Sum of positive closed-trade P&L
	TotalLoss   float64 // Sum of absolute negative closed-trade P&L
	BestTrade   float64
	WorstTrade  float64

	ProfitFactor      float64 // TotalProfit / TotalLoss, 0 when there is no loss
	AverageWin        float64
	AverageLoss       float64 // Negative or zero
	AverageRiskReward float64
	MaxDrawdown       float64 // Largest drop from a peak of the cumulative P&L

	EquityCurve []EquityPoint
	MonthlyPnL  map[string]float64 // Keyed by "2006-01"
}

// EquityPoint represents a point on the equity curve.
type EquityPoint struct {
	TradeIndex    int // 1-based position in chronological order
	TradeID       string
	CumulativePnL float64
	Timestamp     time.Time
}

// MonthlyReturn represents the closed-trade P&L of one month.
type MonthlyReturn struct {
	Month time.Time
	PnL   float64
}

// MonthlyReturns returns the monthly P&L as a slice sorted by month.
func (s *PortfolioStats) MonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(s.MonthlyPnL))
	for month, pnl := range s.MonthlyPnL {
		date, err := time.Parse("2006-01", month)
		if err != nil {
			continue
		}
		returns = append(returns, MonthlyReturn{Month: date, PnL: pnl})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}
