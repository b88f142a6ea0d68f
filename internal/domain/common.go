package domain

import "strings"

// Direction is the side of a trade after normalization.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// ParseDirection maps the spellings used by the data sources (buy/sell/long/short)
// onto a Direction. The second return value is false for anything else.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "long":
		return Long, true
	case "sell", "short":
		return Short, true
	default:
		return "", false
	}
}

// TradeStatus represents the lifecycle state of a journal entry.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "open"
	StatusClosed    TradeStatus = "closed"
	StatusCancelled TradeStatus = "cancelled"
)

// ParseStatus maps a raw status string onto a TradeStatus.
func ParseStatus(s string) (TradeStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen, true
	case "closed":
		return StatusClosed, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	default:
		return "", false
	}
}

// TradeResult classifies the outcome of a trade.
type TradeResult string

const (
	ResultWin       TradeResult = "win"
	ResultLoss      TradeResult = "loss"
	ResultBreakeven TradeResult = "breakeven"
	ResultPending   TradeResult = "pending"
)
