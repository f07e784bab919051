package invoicetext

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// The generic strategies. Each one turns body lines into a ParseCandidate
// its own way; none of them is trusted — the validator decides which
// reading of the document survives.

// Strategy names, attached to candidates and items.
const (
	StrategyHeaderGuided  = "header-guided"
	StrategyPriceAnchored = "price-anchored"
	StrategyUniversal     = "universal-patterns"
	StrategyDelimiter     = "delimiter-based"
	StrategyHeuristic     = "heuristic-classification"
)

// strategyContext bundles the shared per-document inputs every strategy
// reads from.
type strategyContext struct {
	doc     InvoiceText
	merged  []mergedLine
	layout  TableLayout
	totals  []TotalCandidate
	adjusts []Adjustment
	vendor  VendorIdentity
	header  Header
}

// isSummaryLine reports whether a line belongs to the totals block or the
// adjustments vocabulary and must not be parsed as an item.
func isSummaryLine(line string) bool {
	if rule, _ := findLabel(line); rule != nil {
		return true
	}
	for _, pat := range adjustmentPatterns {
		if pat.re.MatchString(line) {
			return true
		}
	}
	return false
}

// buildItem normalizes one raw extraction into a LineItem, rejecting rows
// that can never be products.
func buildItem(desc, sku string, qty int64, unit decimal.Decimal, totalCents int64, source int, strategy string) (LineItem, bool) {
	desc = strings.TrimSpace(desc)
	desc = strings.Trim(desc, "-|")
	desc = strings.TrimSpace(desc)
	if len(desc) < 3 {
		return LineItem{}, false
	}
	if totalCents < 0 {
		return LineItem{}, false
	}
	if qty < 1 {
		qty = 1
	}
	if unit.IsZero() && qty > 0 && totalCents > 0 {
		unit = centsToDecimal(totalCents).Div(decimal.NewFromInt(qty)).Round(3)
	}
	return LineItem{
		SKU:            sku,
		Description:    desc,
		Quantity:       qty,
		UnitPrice:      unit,
		UnitPriceCents: toCents(unit),
		LineTotalCents: totalCents,
		Taxable:        true,
		Category:       "product",
		SourceLine:     source,
		Strategy:       strategy,
	}, true
}

// newCandidate wraps a strategy's items into a candidate seeded with the
// shared totals, adjustments and header.
func newCandidate(ctx *strategyContext, strategy string, items []LineItem, vendorSpecific bool) *ParseCandidate {
	sub, tax, printed, _ := selectTotals(ctx.totals)
	c := &ParseCandidate{
		Vendor:         ctx.vendor,
		Strategy:       strategy,
		VendorSpecific: vendorSpecific,
		Header:         ctx.header,
		Items:          items,
		Adjustments:    append([]Adjustment(nil), ctx.adjusts...),
		RawLineCount:   len(ctx.doc.Lines),
		Totals: Totals{
			SubtotalCents:     sub,
			TaxCents:          tax,
			PrintedTotalCents: printed,
			Currency:          "USD",
		},
	}
	fixCandidateMath(c)
	c.Confidence = scoreStrategy(c)
	return c
}

// scoreStrategy is the strategy-level self score: item count (capped),
// math validation rate, and closeness of the item sum to the extracted
// total. Suspicious quantities cost points.
func scoreStrategy(c *ParseCandidate) int {
	score := 0

	bonus := len(c.Items) * 2
	if bonus > 30 {
		bonus = 30
	}
	score += bonus

	if len(c.Items) > 0 {
		valid := 0
		suspicious := 0
		var sum int64
		for _, it := range c.Items {
			if it.MathValidated {
				valid++
			}
			if it.Quantity > 100 {
				suspicious++
			}
			sum += it.LineTotalCents
		}
		score += valid * 30 / len(c.Items)

		ref := c.Totals.SubtotalCents
		if ref == 0 {
			ref = c.Totals.PrintedTotalCents
		}
		if ref > 0 {
			switch {
			case withinPct(sum, ref, 2):
				score += 20
			case withinPct(sum, ref, 10):
				score += 10
			case withinPct(sum, ref, 25):
				score += 5
			}
		}

		penalty := suspicious * 5
		if penalty > 15 {
			penalty = 15
		}
		score -= penalty
	}

	if score < 0 {
		score = 0
	}
	return score
}

// parseHeaderGuided parses by detected column boundaries. It requires a
// header row with at least three columns and does not stop at group
// subtotals: it skips them, without recording them, and keeps going so
// items below still get captured.
func parseHeaderGuided(ctx *strategyContext) *ParseCandidate {
	if ctx.layout.HeaderLine < 0 || len(ctx.layout.Columns) < 3 {
		return nil
	}

	roles := columnRoles(ctx.doc.Lines[ctx.layout.HeaderLine], ctx.layout)

	var items []LineItem
	for i := ctx.layout.HeaderLine + 1; i < len(ctx.doc.Lines); i++ {
		line := ctx.doc.Lines[i]
		if strings.TrimSpace(line) == "" || isSummaryLine(line) {
			continue
		}
		parts := ctx.layout.sliceColumns(line)
		if len(parts) < 3 {
			continue
		}

		var desc, sku string
		var qty int64
		var unit decimal.Decimal
		var totalCents int64
		for n, part := range parts {
			if part == "" || n >= len(roles) {
				continue
			}
			switch roles[n] {
			case "qty":
				if v, ok := parseQty(part); ok {
					qty = v
				}
			case "sku":
				sku = part
			case "desc":
				desc = part
			case "price":
				if d, ok := parseMoneyDecimal(part); ok {
					unit = d
				}
			case "total":
				if cents, ok := parseMoney(part); ok {
					totalCents = cents
				}
			}
		}
		if isGroupSubtotalItem(LineItem{Description: desc}) {
			continue
		}
		if it, ok := buildItem(desc, sku, qty, unit, totalCents, i, StrategyHeaderGuided); ok && totalCents > 0 {
			items = append(items, it)
		}
	}
	return newCandidate(ctx, StrategyHeaderGuided, items, false)
}

// columnRoles maps detected columns to field roles using the header text
// above each column slice.
func columnRoles(headerLine string, layout TableLayout) []string {
	parts := layout.sliceColumns(headerLine)
	roles := make([]string, len(parts))
	for i, p := range parts {
		upper := strings.ToUpper(p)
		switch {
		case strings.Contains(upper, "QTY") || strings.Contains(upper, "QUANTITY"):
			roles[i] = "qty"
		case strings.Contains(upper, "SKU") || strings.Contains(upper, "ITEM") || strings.Contains(upper, "CODE"):
			roles[i] = "sku"
		case strings.Contains(upper, "DESCRIPTION") || strings.Contains(upper, "PRODUCT"):
			roles[i] = "desc"
		case strings.Contains(upper, "EXT") || strings.Contains(upper, "TOTAL") || strings.Contains(upper, "AMOUNT"):
			roles[i] = "total"
		case strings.Contains(upper, "PRICE") || strings.Contains(upper, "RATE") || strings.Contains(upper, "UNIT"):
			roles[i] = "price"
		default:
			roles[i] = "desc"
		}
	}
	return roles
}

func parseQty(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 3 {
		return 0, false
	}
	var v int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int64(r-'0')
	}
	if v < 1 || v > 999 {
		return 0, false
	}
	return v, true
}

var reTrailingSKU = regexp.MustCompile(`\b\d{5,12}\s*$`)

// parsePriceAnchored pulls prices from the right edge and a quantity from
// the left, using the text between as the description.
func parsePriceAnchored(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}
		anchored := extractRightAnchoredPrices(ml.Text)
		if anchored.Count == 0 {
			continue
		}

		totalCents := toCents(anchored.LineTotal)
		unit := anchored.UnitPrice

		rest := anchored.Rest
		var qty int64 = 1
		if lq, ok := extractLeftQuantity(rest); ok {
			qty = lq.Value
			rest = lq.Rest
		}

		var sku string
		if m := reTrailingSKU.FindString(rest); m != "" {
			sku = strings.TrimSpace(m)
			rest = strings.TrimSpace(strings.TrimSuffix(rest, m))
		}

		if it, ok := buildItem(rest, sku, qty, unit, totalCents, ml.Source, StrategyPriceAnchored); ok && totalCents > 0 {
			items = append(items, it)
		}
	}
	return newCandidate(ctx, StrategyPriceAnchored, items, false)
}

// Universal line patterns, ranked. First match wins per line.
var universalPatterns = []struct {
	name string
	re   *regexp.Regexp
	// group order: qty, sku, desc, price, ext (0 = absent)
	qty, sku, desc, price, ext int
}{
	{"qty-sku-desc-price-ext",
		regexp.MustCompile(`^\s*(\d{1,3})\s+(\d{4,12})\s+(.+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`),
		1, 2, 3, 4, 5},
	{"qty-desc-price-ext",
		regexp.MustCompile(`^\s*(\d{1,3})\s+([A-Za-z].+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`),
		1, 0, 2, 3, 4},
	{"desc-qty-price-ext",
		regexp.MustCompile(`^\s*([A-Za-z].+?)\s+(\d{1,3})\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`),
		2, 0, 1, 3, 4},
	{"tab-delimited",
		regexp.MustCompile(`^\s*(\d{1,3})\t+(.+?)\t+\$?([\d,]+\.\d{2})\s*$`),
		1, 0, 2, 0, 3},
	{"desc-price",
		regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 &.,'/-]{2,})\s{2,}\$?([\d,]+\.\d{2})\s*$`),
		0, 0, 1, 0, 2},
}

// parseUniversal tries the ranked pattern list against every line.
func parseUniversal(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}
		for _, pat := range universalPatterns {
			m := pat.re.FindStringSubmatch(ml.Text)
			if m == nil {
				continue
			}
			var qty int64 = 1
			if pat.qty > 0 {
				if v, ok := parseQty(m[pat.qty]); ok {
					qty = v
				}
			}
			var sku string
			if pat.sku > 0 {
				sku = m[pat.sku]
			}
			var unit decimal.Decimal
			if pat.price > 0 {
				unit, _ = parseMoneyDecimal(m[pat.price])
			}
			var totalCents int64
			if pat.ext > 0 {
				totalCents, _ = parseMoney(m[pat.ext])
			}
			if it, ok := buildItem(m[pat.desc], sku, qty, unit, totalCents, ml.Source, StrategyUniversal); ok && totalCents > 0 {
				items = append(items, it)
			}
			break
		}
	}
	return newCandidate(ctx, StrategyUniversal, items, false)
}

var reDelimiters = regexp.MustCompile(`\t+|\s{3,}|\s*\|\s*`)

// parseDelimiter splits lines on tabs, pipes or wide space runs and
// classifies the parts.
func parseDelimiter(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}
		parts := reDelimiters.Split(strings.TrimSpace(ml.Text), -1)
		if len(parts) < 2 {
			continue
		}

		var desc, sku string
		var qty int64
		var prices []decimal.Decimal
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if d, ok := parseMoneyDecimal(part); ok && strings.Contains(part, ".") {
				prices = append(prices, d)
				continue
			}
			if v, ok := parseQty(part); ok && qty == 0 {
				qty = v
				continue
			}
			if reTrailingSKU.MatchString(part) && sku == "" && !strings.Contains(part, " ") {
				sku = part
				continue
			}
			if len(part) > len(desc) {
				desc = part
			}
		}
		if len(prices) == 0 {
			continue
		}

		var unit decimal.Decimal
		totalCents := toCents(prices[len(prices)-1])
		if len(prices) >= 2 {
			unit = prices[len(prices)-2]
		}
		if it, ok := buildItem(desc, sku, qty, unit, totalCents, ml.Source, StrategyDelimiter); ok && totalCents > 0 {
			items = append(items, it)
		}
	}
	return newCandidate(ctx, StrategyDelimiter, items, false)
}

// parseHeuristic is classifier-driven: prices from the right, quantity
// from the left, SKU from the residual sku-classified tokens, description
// from whatever text remains.
func parseHeuristic(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}
		tokens := ClassifyLine(ml.Text, ml.Source)

		var prices []NumericToken
		var qtyTok, skuTok *NumericToken
		for i := range tokens {
			tok := &tokens[i]
			switch tok.Type {
			case TokenPrice:
				prices = append(prices, *tok)
			case TokenQuantity:
				if qtyTok == nil || tok.Confidence > qtyTok.Confidence {
					qtyTok = tok
				}
			case TokenSKU:
				if skuTok == nil || tok.Confidence > skuTok.Confidence {
					skuTok = tok
				}
			}
		}
		if len(prices) == 0 {
			continue
		}

		last := prices[len(prices)-1]
		totalCents, _ := parseMoney(last.Raw)
		var unit decimal.Decimal
		if len(prices) >= 2 {
			unit, _ = parseMoneyDecimal(prices[len(prices)-2].Raw)
		}

		var qty int64 = 1
		if qtyTok != nil {
			qty = int64(qtyTok.Value)
		}
		var sku string
		if skuTok != nil {
			sku = skuTok.Raw
		}

		// Description: the text between the left numeric block and the
		// first right-anchored price.
		descStart := 0
		if qtyTok != nil {
			descStart = qtyTok.EndCol
		}
		if skuTok != nil && skuTok.EndCol > descStart && skuTok.StartCol < int(float64(len(ml.Text))*0.5) {
			descStart = skuTok.EndCol
		}
		descEnd := prices[0].StartCol
		if descEnd < descStart {
			descEnd = descStart
		}
		desc := ml.Text[descStart:descEnd]

		if it, ok := buildItem(desc, sku, qty, unit, totalCents, ml.Source, StrategyHeuristic); ok && totalCents > 0 {
			items = append(items, it)
		}
	}
	return newCandidate(ctx, StrategyHeuristic, items, false)
}
