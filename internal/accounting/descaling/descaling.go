// Package descaling reverses the write-time workaround that divides prices by an integer
// factor when they exceed the storage column's precision. The factor travels in the trade
// notes as a "[SCALED_xN]" marker; this package is the only code that looks for it.
package descaling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// DefaultPrecisionLimit is the smallest price the storage column cannot hold.
const DefaultPrecisionLimit = 100000.0

// maxRestorePlaces bounds the search for the shortest restored price. A float64 never
// needs more decimal places than this to be reproduced exactly.
const maxRestorePlaces = 24

var (
	// anyMarker matches well-formed and corrupt markers alike, so corrupt ones can be counted.
	anyMarker = regexp.MustCompile(`\[SCALED_x([^\]]*)\]`)
	// factorDigits is the only factor grammar accepted; it is the same one markerWithSpace strips.
	factorDigits = regexp.MustCompile(`^\d+$`)
	// markerWithSpace matches a well-formed marker together with the whitespace around it.
	markerWithSpace = regexp.MustCompile(`\s*\[SCALED_x\d+\]\s*`)
)

// Scaling is the result of scanning notes for a marker.
type Scaling struct {
	Scaled bool
	Factor int64
}

var unscaled = Scaling{Scaled: false, Factor: 1}

// DetectScaling scans notes for a single "[SCALED_xN]" marker.
// A missing, repeated or corrupt marker (signed, non-integer, zero) and a factor of 1 all
// report unscaled.
func DetectScaling(notes *string) Scaling {
	if notes == nil {
		return unscaled
	}
	matches := anyMarker.FindAllStringSubmatch(*notes, -1)
	if len(matches) != 1 || !factorDigits.MatchString(matches[0][1]) {
		return unscaled
	}
	factor, err := strconv.ParseInt(matches[0][1], 10, 64)
	if err != nil || factor <= 1 {
		return unscaled
	}
	return Scaling{Scaled: true, Factor: factor}
}

// Descale restores true price magnitudes of a trade stored with a scaling marker.
// Entry and exit prices are multiplied by the factor and the marker is removed from the notes.
// Position size is never touched. A trade without a valid marker is returned unchanged,
// which makes Descale idempotent.
func Descale(t domain.Trade) domain.Trade {
	s := DetectScaling(t.Notes)
	if !s.Scaled {
		return t
	}

	out := t
	factor := decimal.NewFromInt(s.Factor)
	out.EntryPrice = restore(t.EntryPrice, factor)
	if t.ExitPrice != nil {
		exit := restore(*t.ExitPrice, factor)
		out.ExitPrice = &exit
	}
	out.Notes = stripMarker(*t.Notes)
	return out
}

// Scale applies the write-side workaround: prices are divided by factor and the marker is
// appended to the notes. A factor of 1 or less returns the trade unchanged.
func Scale(t domain.Trade, factor int64) domain.Trade {
	if factor <= 1 {
		return t
	}

	out := t
	f := decimal.NewFromInt(factor)
	out.EntryPrice = divide(t.EntryPrice, f)
	if t.ExitPrice != nil {
		exit := divide(*t.ExitPrice, f)
		out.ExitPrice = &exit
	}

	marker := Marker(factor)
	notes := marker
	if t.Notes != nil && strings.TrimSpace(*t.Notes) != "" {
		notes = strings.TrimSpace(*t.Notes) + " " + marker
	}
	out.Notes = &notes
	return out
}

// ScaleToFit picks the smallest power-of-ten factor that brings the entry and exit prices
// strictly below limit and scales the trade with it. Any marker already present is resolved
// first, so the trade never ends up with two.
func ScaleToFit(t domain.Trade, limit float64) (domain.Trade, int64) {
	t = Descale(t)
	if limit <= 0 {
		limit = DefaultPrecisionLimit
	}

	highest := t.EntryPrice
	if t.ExitPrice != nil && *t.ExitPrice > highest {
		highest = *t.ExitPrice
	}

	lim := decimal.NewFromFloat(limit)
	price := decimal.NewFromFloat(highest)
	ten := decimal.NewFromInt(10)
	factor := int64(1)
	for f := decimal.NewFromInt(1); price.Div(f).GreaterThanOrEqual(lim); f = f.Mul(ten) {
		factor = f.Mul(ten).IntPart()
	}
	return Scale(t, factor), factor
}

// Marker renders the notes annotation for a factor.
func Marker(factor int64) string {
	return fmt.Sprintf("[SCALED_x%d]", factor)
}

func divide(price float64, factor decimal.Decimal) float64 {
	return decimal.NewFromFloat(price).Div(factor).InexactFloat64()
}

// restore multiplies a stored price back by factor. The product carries the float error of
// the division, so the result is the product rounded to the fewest decimal places that still
// divides back to the stored value: the price that was written, not the noise.
func restore(stored float64, factor decimal.Decimal) float64 {
	product := decimal.NewFromFloat(stored).Mul(factor)
	for places := int32(0); places <= maxRestorePlaces; places++ {
		candidate := product.Round(places).InexactFloat64()
		if divide(candidate, factor) == stored {
			return candidate
		}
	}
	return product.InexactFloat64()
}

func stripMarker(notes string) *string {
	cleaned := strings.TrimSpace(markerWithSpace.ReplaceAllString(notes, " "))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
