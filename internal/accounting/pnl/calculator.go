// Package pnl computes per-trade profit and loss.
package pnl

import (
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// Places is the number of decimal places P&L values are rounded to.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Options carries caller-side inputs that are not part of the stored trade.
type Options struct {
	// StopLoss used for the risk/reward ratio. Nil means no stop-loss was set.
	StopLoss *float64
	// Multiplier converts price movement times size into account currency
	// (contract size, pip value). Zero is treated as 1.
	Multiplier float64
}

func (o Options) multiplier() decimal.Decimal {
	if o.Multiplier == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(o.Multiplier)
}

// ComputePnL returns the realized profit/loss of a trade.
// A trade is realized only when its status is closed and it has an exit price; anything else
// is pending with zero P&L, whatever prices it carries.
// Values are computed at full precision and rounded once at the end.
func ComputePnL(t domain.Trade, opts Options) domain.PnLResult {
	if !t.IsRealized() {
		return domain.PnLResult{Result: domain.ResultPending}
	}

	pnl, pct := compute(t.Direction, t.EntryPrice, *t.ExitPrice, t.PositionSize, opts.multiplier())
	res := domain.PnLResult{
		PnL:        pnl.InexactFloat64(),
		PnLPercent: pct.InexactFloat64(),
		IsRealized: true,
	}
	switch pnl.Sign() {
	case 1:
		res.Result = domain.ResultWin
	case -1:
		res.Result = domain.ResultLoss
	default:
		res.Result = domain.ResultBreakeven
	}
	return res
}

// Unrealized marks an open trade against a current price. Trades that are not open
// report zero P&L at the given mark.
func Unrealized(t domain.Trade, mark float64, opts Options) domain.UnrealizedPnL {
	out := domain.UnrealizedPnL{MarkPrice: mark}
	if !t.IsOpen() || mark <= 0 {
		return out
	}
	pnl, pct := compute(t.Direction, t.EntryPrice, mark, t.PositionSize, opts.multiplier())
	out.PnL = pnl.InexactFloat64()
	out.PnLPercent = pct.InexactFloat64()
	return out
}

// RiskReward returns reward/risk for a realized trade: the absolute price move from entry to
// exit over the absolute distance from entry to the stop-loss. No stop-loss, no exit price or a
// zero risk distance all give 0.
func RiskReward(t domain.Trade, stopLoss *float64) float64 {
	if stopLoss == nil || t.ExitPrice == nil {
		return 0
	}
	entry := decimal.NewFromFloat(t.EntryPrice)
	reward := decimal.NewFromFloat(*t.ExitPrice).Sub(entry).Abs()
	risk := entry.Sub(decimal.NewFromFloat(*stopLoss)).Abs()
	if !risk.IsPositive() {
		return 0
	}
	return reward.Div(risk).InexactFloat64()
}

// compute returns P&L and P&L percent, both rounded to Places.
func compute(dir domain.Direction, entryPrice, exitPrice, size float64, mult decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	entry := decimal.NewFromFloat(entryPrice)
	exit := decimal.NewFromFloat(exitPrice)
	qty := decimal.NewFromFloat(size)

	move := exit.Sub(entry)
	if dir == domain.Short {
		move = entry.Sub(exit)
	}
	pnl := move.Mul(qty).Mul(mult)

	pct := decimal.Zero
	if notional := entry.Mul(qty).Mul(mult); !notional.IsZero() {
		pct = pnl.Div(notional).Mul(hundred)
	}
	return Round(pnl), Round(pct)
}

// Round rounds a value to Places with halves going away from zero: 0.125 becomes 0.13 and
// -0.125 becomes -0.13, not the -0.12 plain round-half-up would give. A long and the
// mirrored short therefore always round to exact negatives of each other.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum adds already rounded amounts exactly and returns the rounded total.
func Sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return Round(total).InexactFloat64()
}
