package invoicetext

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The number classifier decides what each numeric literal on a line is:
// a price, an item code, a quantity or a pack size. Strategies that have
// no column information lean on it entirely; the others use it to sanity
// check what the columns gave them.

var (
	reNumericToken = regexp.MustCompile(`\$?\d[\d,]*(?:\.\d+)?`)
	reUnitToken    = regexp.MustCompile(`\b(CS|EA|LB|GAL|CT|DOZ|PK|BX|OZ|QT|PT|ML|KG)\b`)
	rePackUnit     = regexp.MustCompile(`^\s*(OZ|LB|GAL|CT|ML|KG|QT|PT)\b`)
)

// ClassifyLine extracts every numeric literal from the line and
// classifies it with a confidence score and the reasons behind it.
func ClassifyLine(line string, lineIndex int) []NumericToken {
	width := len(line)
	if width == 0 {
		return nil
	}

	matches := reNumericToken.FindAllStringIndex(line, -1)
	tokens := make([]NumericToken, 0, len(matches))
	for _, m := range matches {
		raw := line[m[0]:m[1]]
		tok := NumericToken{
			Raw:       raw,
			LineIndex: lineIndex,
			StartCol:  m[0],
			EndCol:    m[1],
		}
		if width > 1 {
			tok.RelativePosition = float64(m[0]) / float64(width-1)
		}

		cleaned := strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", "")
		val, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		tok.Value = val

		classifyToken(&tok, raw, cleaned, line, m[1])
		tokens = append(tokens, tok)
	}
	return tokens
}

func classifyToken(tok *NumericToken, raw, cleaned, line string, end int) {
	hasDollar := strings.HasPrefix(raw, "$")
	dot := strings.IndexByte(cleaned, '.')
	fracDigits := 0
	if dot >= 0 {
		fracDigits = len(cleaned) - dot - 1
	}
	intDigits := len(cleaned)
	if dot >= 0 {
		intDigits = dot
	}

	// Trailing unit token right after the number marks a pack size.
	rest := line[end:]
	if dot < 0 && rePackUnit.MatchString(strings.ToUpper(rest)) {
		tok.Type = TokenPackSize
		tok.Confidence = 70
		tok.Reasons = append(tok.Reasons, "integer followed by unit token")
		return
	}

	switch {
	case fracDigits == 2 || (fracDigits == 3 && !hasDollar && tok.RelativePosition > 0.4):
		tok.Type = TokenPrice
		tok.Confidence = 60
		tok.Reasons = append(tok.Reasons, "two-decimal literal")
		if hasDollar {
			tok.Confidence += 15
			tok.Reasons = append(tok.Reasons, "currency symbol")
		}
		if tok.RelativePosition >= 0.5 {
			tok.Confidence += 15
			tok.Reasons = append(tok.Reasons, "right half of line")
		}
		if tok.Value >= 0.01 && tok.Value <= 99999.99 {
			tok.Confidence += 10
			tok.Reasons = append(tok.Reasons, "plausible amount")
		}

	case dot < 0 && intDigits >= 5 && intDigits <= 12:
		tok.Type = TokenSKU
		tok.Confidence = 55
		tok.Reasons = append(tok.Reasons, "5-12 digit integer")
		if tok.RelativePosition > 0.2 && tok.RelativePosition < 0.7 {
			tok.Confidence += 20
			tok.Reasons = append(tok.Reasons, "middle of line")
		}
		if tok.Value > 10000 {
			tok.Confidence += 10
			tok.Reasons = append(tok.Reasons, "too large for a quantity")
		}

	case dot < 0 && tok.Value >= 1 && tok.Value <= 999:
		tok.Type = TokenQuantity
		tok.Confidence = 50
		tok.Reasons = append(tok.Reasons, "small integer")
		if tok.RelativePosition <= 0.33 {
			tok.Confidence += 20
			tok.Reasons = append(tok.Reasons, "left third of line")
		}
		if reUnitToken.MatchString(strings.ToUpper(nearbyText(line, tok.EndCol, 6))) {
			tok.Confidence += 15
			tok.Reasons = append(tok.Reasons, "unit token nearby")
		}

	default:
		tok.Type = TokenUnknown
		tok.Confidence = 20
	}

	if tok.Confidence > 100 {
		tok.Confidence = 100
	}
}

func nearbyText(line string, from, width int) string {
	to := from + width
	if to > len(line) {
		to = len(line)
	}
	if from > len(line) {
		from = len(line)
	}
	return line[from:to]
}

// ValidateItemMath checks qty × unit price against the printed line total
// within the item tolerance and repairs an implausible quantity when the
// arithmetic identifies the real one. A quantity that is actually a
// misread SKU shows up as an implied quantity in [1, 999] that closes the
// math; the original value is preserved in OriginalQty. Items whose math
// cannot be closed keep MathValidated=false but stay in the list.
func ValidateItemMath(item *LineItem) {
	if item.Quantity <= 0 || item.UnitPrice.IsZero() {
		item.MathValidated = item.LineTotalCents == 0
		return
	}

	expected := lineTotalFromUnit(item.Quantity, item.UnitPrice)
	if absCents(expected-item.LineTotalCents) <= itemMathTolerance(item.LineTotalCents) {
		item.MathValidated = true
		return
	}

	unitCents := toCents(item.UnitPrice)
	if unitCents > 0 {
		implied := int64(math.Round(float64(item.LineTotalCents) / float64(unitCents)))
		if implied >= 1 && implied <= 999 {
			repaired := lineTotalFromUnit(implied, item.UnitPrice)
			if absCents(repaired-item.LineTotalCents) <= itemMathTolerance(item.LineTotalCents) {
				orig := item.Quantity
				item.OriginalQty = &orig
				item.Quantity = implied
				item.MathCorrected = true
				item.MathValidated = true
				return
			}
		}
	}

	item.MathValidated = false
}

// fixCandidateMath runs the math validation and repair pass over every
// item of a candidate and refreshes the rounded unit price cents.
func fixCandidateMath(c *ParseCandidate) {
	for i := range c.Items {
		it := &c.Items[i]
		if it.UnitPrice.IsZero() && it.UnitPriceCents != 0 {
			it.UnitPrice = centsToDecimal(it.UnitPriceCents)
		}
		ValidateItemMath(it)
		it.UnitPriceCents = toCents(it.UnitPrice)
	}
}
