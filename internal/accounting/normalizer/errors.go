package normalizer

import (
	"fmt"

	"tradeJournal/internal/ports"
)

// MalformedTradeError reports a raw record that cannot be turned into a Trade.
// It wraps ports.ErrMalformedTrade.
type MalformedTradeError struct {
	RecordID string // Empty when the record carries no id
	Field    string // Canonical field name, e.g. "entryPrice"
	Reason   string
}

func (e *MalformedTradeError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("trade %s: field %s: %s", e.RecordID, e.Field, e.Reason)
	}
	return fmt.Sprintf("trade record: field %s: %s", e.Field, e.Reason)
}

func (e *MalformedTradeError) Unwrap() error {
	return ports.ErrMalformedTrade
}

func malformed(id, field, reason string) *MalformedTradeError {
	return &MalformedTradeError{RecordID: id, Field: field, Reason: reason}
}
