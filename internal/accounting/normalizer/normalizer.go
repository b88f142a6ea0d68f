// Package normalizer turns raw trade records from either supported source shape
// into canonical domain.Trade values.
package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"tradeJournal/internal/domain"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Normalize maps a single raw record onto a Trade.
// Missing required fields and unrecognized enum values return a *MalformedTradeError.
func Normalize(raw map[string]any) (domain.Trade, error) {
	var t domain.Trade

	if v, ok := lookup(raw, FieldID); ok {
		t.ID = toString(v)
	}

	v, ok := lookup(raw, FieldInstrument)
	if !ok {
		return domain.Trade{}, malformed(t.ID, FieldInstrument, "missing")
	}
	t.Instrument = strings.TrimSpace(toString(v))

	v, ok = lookup(raw, FieldDirection)
	if !ok {
		return domain.Trade{}, malformed(t.ID, FieldDirection, "missing")
	}
	dir, ok := domain.ParseDirection(toString(v))
	if !ok {
		return domain.Trade{}, malformed(t.ID, FieldDirection, fmt.Sprintf("unrecognized value %q", toString(v)))
	}
	t.Direction = dir

	entry, err := requiredPrice(raw, t.ID, FieldEntryPrice)
	if err != nil {
		return domain.Trade{}, err
	}
	t.EntryPrice = entry

	size, err := requiredPrice(raw, t.ID, FieldPositionSize)
	if err != nil {
		return domain.Trade{}, err
	}
	t.PositionSize = size

	if t.ExitPrice, err = optionalPrice(raw, t.ID, FieldExitPrice); err != nil {
		return domain.Trade{}, err
	}
	if t.StopLoss, err = optionalPrice(raw, t.ID, FieldStopLoss); err != nil {
		return domain.Trade{}, err
	}
	if t.TakeProfit, err = optionalPrice(raw, t.ID, FieldTakeProfit); err != nil {
		return domain.Trade{}, err
	}

	t.Status = domain.StatusOpen
	if v, ok := lookup(raw, FieldStatus); ok {
		status, ok := domain.ParseStatus(toString(v))
		if !ok {
			return domain.Trade{}, malformed(t.ID, FieldStatus, fmt.Sprintf("unrecognized value %q", toString(v)))
		}
		t.Status = status
	}

	if v, ok := lookup(raw, FieldNotes); ok {
		notes := toString(v)
		t.Notes = &notes
	}

	if t.CreatedAt, err = optionalTime(raw, t.ID, FieldCreatedAt); err != nil {
		return domain.Trade{}, err
	}
	if t.UpdatedAt, err = optionalTime(raw, t.ID, FieldUpdatedAt); err != nil {
		return domain.Trade{}, err
	}

	return t, nil
}

// NormalizeAll normalizes a batch. Records that fail are reported in errs and left out
// of trades; the caller decides whether to skip them or reject the batch.
func NormalizeAll(raws []map[string]any) (trades []domain.Trade, errs []error) {
	trades = make([]domain.Trade, 0, len(raws))
	for _, raw := range raws {
		t, err := Normalize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		trades = append(trades, t)
	}
	return trades, errs
}

func requiredPrice(raw map[string]any, id, field string) (float64, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return 0, malformed(id, field, "missing")
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, malformed(id, field, err.Error())
	}
	if f < 0 {
		return 0, malformed(id, field, "must not be negative")
	}
	return f, nil
}

func optionalPrice(raw map[string]any, id, field string) (*float64, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return nil, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, malformed(id, field, err.Error())
	}
	if f < 0 {
		return nil, malformed(id, field, "must not be negative")
	}
	return &f, nil
}

func optionalTime(raw map[string]any, id, field string) (time.Time, error) {
	v, ok := lookup(raw, field)
	if !ok {
		return time.Time{}, nil
	}
	switch tv := v.(type) {
	case time.Time:
		return tv, nil
	case *time.Time:
		return *tv, nil
	case string:
		s := strings.TrimSpace(tv)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, malformed(id, field, fmt.Sprintf("unparsable timestamp %q", tv))
	case json.Number:
		if ms, err := tv.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		f, err := tv.Float64()
		if err != nil {
			return time.Time{}, malformed(id, field, fmt.Sprintf("unparsable epoch millis %q", tv.String()))
		}
		return time.UnixMilli(int64(f)).UTC(), nil
	case int:
		return time.UnixMilli(int64(tv)).UTC(), nil
	case int64:
		return time.UnixMilli(tv).UTC(), nil
	case float64:
		return time.UnixMilli(int64(tv)).UTC(), nil
	default:
		return time.Time{}, malformed(id, field, fmt.Sprintf("unsupported timestamp type %T", v))
	}
}

func isNull(v any) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(tv) == ""
	case *string:
		return tv == nil || strings.TrimSpace(*tv) == ""
	case *float64:
		return tv == nil
	case *time.Time:
		return tv == nil
	default:
		return false
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case *float64:
		f = *n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		f = parsed
	case []byte:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", string(n))
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return f, nil
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		return *s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	default:
		return fmt.Sprint(v)
	}
}
