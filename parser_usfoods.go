package invoicetext

import (
	"regexp"
)

// US Foods invoices: the item code leads the row, quantity and unit sit
// between description and prices, and the document is littered with group
// totals per storage zone that must never be read as items.

const StrategyUSFoods = "vendor-usfoods"

var (
	// "1234567 TOMATO DICED 6/#10  2 CS  34.56  69.12"
	reUSFoodsFull = regexp.MustCompile(`^\s*(\d{6,8})\s+(.+?)\s+(\d{1,3})\s+(CS|EA|LB|GAL|CT|PC)?\s*\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
	// Leading-quantity variant: "2 CS 1234567 TOMATO DICED  34.56  69.12"
	reUSFoodsQtyFirst = regexp.MustCompile(`^\s*(\d{1,3})\s+(CS|EA|LB|GAL|CT|PC)\s+(\d{6,8})\s+(.+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
)

// parseUSFoods reads a US Foods-layout document.
func parseUSFoods(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}
		if isGroupSubtotalItem(LineItem{Description: ml.Text}) {
			continue
		}

		if m := reUSFoodsFull.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[3])
			unit, _ := parseMoneyDecimal(m[5])
			totalCents, _ := parseMoney(m[6])
			if it, ok := buildItem(m[2], m[1], qty, unit, totalCents, ml.Source, StrategyUSFoods); ok && totalCents > 0 {
				it.DetectedUnits = m[4]
				items = append(items, it)
			}
			continue
		}

		if m := reUSFoodsQtyFirst.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[1])
			unit, _ := parseMoneyDecimal(m[5])
			totalCents, _ := parseMoney(m[6])
			if it, ok := buildItem(m[4], m[3], qty, unit, totalCents, ml.Source, StrategyUSFoods); ok && totalCents > 0 {
				it.DetectedUnits = m[2]
				items = append(items, it)
			}
		}
	}

	c := newCandidate(ctx, StrategyUSFoods, items, true)
	c.Vendor = VendorIdentity{Key: VendorUSFoods, DisplayName: "US Foods, Inc.", Confidence: ctx.vendor.Confidence}
	return c
}
