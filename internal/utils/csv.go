package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// TradeHeader is the column layout of trade exports. The names are accepted by the
// normalizer, so an export can be read back as raw trade records.
var TradeHeader = []string{
	"id", "instrument", "direction", "entry_price", "exit_price", "position_size", "status",
	"stop_loss", "take_profit", "created_at", "updated_at", "notes", "pnl", "pnl_percent", "result",
}

// TradeRow is one exported trade with its computed result.
type TradeRow struct {
	Trade  domain.Trade
	Result domain.PnLResult
}

// WriteTradesToCSV writes trades to a CSV file.
func WriteTradesToCSV(rows []TradeRow, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteTrades(file, rows)
}

// WriteTrades writes trades as CSV to w.
func WriteTrades(w io.Writer, rows []TradeRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(TradeHeader); err != nil {
		return err
	}
	for _, r := range rows {
		t := r.Trade
		record := []string{
			t.ID,
			t.Instrument,
			string(t.Direction),
			formatFloat(t.EntryPrice),
			formatOptional(t.ExitPrice),
			formatFloat(t.PositionSize),
			string(t.Status),
			formatOptional(t.StopLoss),
			formatOptional(t.TakeProfit),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
			deref(t.Notes),
			strconv.FormatFloat(r.Result.PnL, 'f', 2, 64),
			strconv.FormatFloat(r.Result.PnLPercent, 'f', 2, 64),
			string(r.Result.Result),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteEquityCurveToCSV writes the cumulative P&L curve to a CSV file.
func WriteEquityCurveToCSV(curve []domain.EquityPoint, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteEquityCurve(file, curve)
}

// WriteEquityCurve writes the cumulative P&L curve as CSV to w.
func WriteEquityCurve(w io.Writer, curve []domain.EquityPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"trade_index", "trade_id", "timestamp", "cumulative_pnl"}); err != nil {
		return err
	}
	for _, p := range curve {
		err := writer.Write([]string{
			strconv.Itoa(p.TradeIndex),
			p.TradeID,
			formatTime(p.Timestamp),
			strconv.FormatFloat(p.CumulativePnL, 'f', 2, 64),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTradesFromCSV reads a trade export back into raw records keyed by column name.
// Empty cells become nil.
func ReadTradesFromCSV(filename string) ([]ports.RawTrade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTrades(file)
}

// ReadTrades reads CSV trade records from r. The first row is the header.
func ReadTrades(r io.Reader) ([]ports.RawTrade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records []ports.RawTrade
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields for %d columns", line, len(row), len(header))
		}

		rec := make(ports.RawTrade, len(header))
		for i, col := range header {
			if i >= len(row) || row[i] == "" {
				rec[col] = nil
				continue
			}
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
