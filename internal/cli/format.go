package cli

import (
	"strconv"

	"tradeJournal/internal/app"
)

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(v app.TradeView) string {
	if v.CreatedAt.IsZero() {
		return "-"
	}
	return v.CreatedAt.UTC().Format("2006-01-02")
}
