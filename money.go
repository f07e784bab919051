package invoicetext

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseMoney converts a printed money string to integer cents. It
// tolerates a leading currency symbol, thousands commas and accounting
// parentheses for negatives: "$1,998.14" -> 199814, "(30.50)" -> -3050.
func parseMoney(s string) (int64, bool) {
	d, ok := parseMoneyDecimal(s)
	if !ok {
		return 0, false
	}
	return toCents(d), true
}

// parseMoneyDecimal is parseMoney without the cents rounding, for callers
// that need three-decimal unit prices intact.
func parseMoneyDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// toCents rounds a decimal dollar amount to integer cents.
func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// centsToDecimal is the inverse of toCents.
func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// lineTotalFromUnit computes quantity × unit price at full precision and
// rounds once at the end. Unit prices may carry three decimals; rounding
// the unit price first loses up to half a cent per unit.
func lineTotalFromUnit(qty int64, unitPrice decimal.Decimal) int64 {
	return toCents(unitPrice.Mul(decimal.NewFromInt(qty)))
}

// itemMathTolerance is the allowed drift between qty × unit price and the
// printed line total: 5 cents or 1% of the line total, whichever is
// larger.
func itemMathTolerance(lineTotalCents int64) int64 {
	pct := lineTotalCents / 100
	if pct < 0 {
		pct = -pct
	}
	if pct > 5 {
		return pct
	}
	return 5
}

// reconcileTolerance is the allowed drift between the printed and
// computed invoice totals: 10 cents or 0.5% of the printed total,
// whichever is larger.
func reconcileTolerance(printedCents int64) int64 {
	pct := printedCents / 200
	if pct < 0 {
		pct = -pct
	}
	if pct > 10 {
		return pct
	}
	return 10
}

func absCents(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// withinPct reports whether a is within pct percent of b (b non-zero).
func withinPct(a, b int64, pct float64) bool {
	if b == 0 {
		return a == 0
	}
	diff := float64(absCents(a - b))
	ref := float64(absCents(b))
	return diff/ref <= pct/100.0
}
