package normalizer

// Canonical field names, used in error messages.
const (
	FieldID           = "id"
	FieldInstrument   = "instrument"
	FieldDirection    = "direction"
	FieldEntryPrice   = "entryPrice"
	FieldExitPrice    = "exitPrice"
	FieldPositionSize = "positionSize"
	FieldStatus       = "status"
	FieldNotes        = "notes"
	FieldStopLoss     = "stopLoss"
	FieldTakeProfit   = "takeProfit"
	FieldCreatedAt    = "createdAt"
	FieldUpdatedAt    = "updatedAt"
)

// FieldTable lists, per canonical field, the source keys tried in order.
// Shape A (snake_case rows) comes first, then Shape B (camelCase JSON), then aliases.
var FieldTable = map[string][]string{
	FieldID:           {"id"},
	FieldInstrument:   {"trade_pair", "tradePair", "instrument", "symbol"},
	FieldDirection:    {"trade_type", "tradeType", "direction", "side"},
	FieldEntryPrice:   {"entry_price", "entryPrice"},
	FieldExitPrice:    {"exit_price", "exitPrice"},
	FieldPositionSize: {"lot_size", "lotSize", "positionSize", "position_size"},
	FieldStatus:       {"status"},
	FieldNotes:        {"notes"},
	FieldStopLoss:     {"stop_loss", "stopLoss"},
	FieldTakeProfit:   {"take_profit", "takeProfit"},
	FieldCreatedAt:    {"created_at", "createdAt"},
	FieldUpdatedAt:    {"updated_at", "updatedAt"},
}

// lookup returns the first defined, non-null value for a canonical field.
// Blank strings count as null.
func lookup(raw map[string]any, field string) (any, bool) {
	for _, key := range FieldTable[field] {
		v, ok := raw[key]
		if !ok || isNull(v) {
			continue
		}
		return v, true
	}
	return nil, false
}
