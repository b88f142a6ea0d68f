package domain

import "time"

// Trade is the canonical journal entry every data source is normalized into.
// Optional values are pointers so that "absent" never collapses into zero.
type Trade struct {
	ID           string      // Opaque identifier from the source
	Instrument   string      // Traded asset or pair (e.g., "EURUSD", "BTCUSDT")
	Direction    Direction   // Long or short
	EntryPrice   float64     // Price at which the position was entered
	ExitPrice    *float64    // Price at which the position was exited (nil if not recorded)
	PositionSize float64     // Lot size / quantity / contracts, unit-agnostic
	Status       TradeStatus // open, closed or cancelled
	Notes        *string     // Free text (nil if absent)
	StopLoss     *float64    // Stop-loss level recorded with the trade, if any
	TakeProfit   *float64    // Take-profit level recorded with the trade, if any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen checks if the trade status is open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// IsClosed checks if the trade status is closed.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}

// IsRealized reports whether the trade has a realized P&L: status closed and an exit price.
// An exit price on a trade that is not closed does not realize it.
func (t *Trade) IsRealized() bool {
	return t.Status == StatusClosed && t.ExitPrice != nil
}

// Float returns a pointer to v. Handy for building optional price fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// PnLResult is the per-trade output of the P&L calculator.
type PnLResult struct {
	PnL        float64     // Rounded to 2 decimal places
	PnLPercent float64     // Rounded to 2 decimal places
	IsRealized bool        // Closed with an exit price
	Result     TradeResult // win, loss, breakeven or pending
}

// UnrealizedPnL is an open trade marked against a current price.
type UnrealizedPnL struct {
	MarkPrice  float64
	PnL        float64
	PnLPercent float64
}
