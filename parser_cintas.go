package invoicetext

import (
	"regexp"
	"strings"
)

// Cintas rental invoices: a category letter ahead of the quantity, short
// item numbers, three-decimal unit prices, and a totals block labelled
// SUBTOTAL / SALES TAX / TOTAL USD, frequently printed as a stacked label
// column.

const StrategyCintas = "vendor-cintas"

var (
	// "C  16  2175  MAT 4X6 BLACK  7.500  120.00"
	reCintasFull = regexp.MustCompile(`^\s*([CFPD])?\s*(\d{1,3})\s+(\d{4,6})\s+(.+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
	// Row without an item number: "16  SHOP TOWEL RED  4.250  68.00"
	reCintasNoSKU = regexp.MustCompile(`^\s*([CFPD])?\s*(\d{1,3})\s+([A-Z].+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
)

var cintasCategories = map[string]string{
	"C": "garment",
	"F": "facility",
	"P": "protection",
	"D": "dust",
}

// parseCintas reads a Cintas-layout document. The column ordering and the
// item-number shape are fixed, which keeps this parser authoritative for
// its own totals block.
func parseCintas(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}

		if m := reCintasFull.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[2])
			unit, _ := parseMoneyDecimal(m[5])
			totalCents, _ := parseMoney(m[6])
			if it, ok := buildItem(m[4], m[3], qty, unit, totalCents, ml.Source, StrategyCintas); ok && totalCents > 0 {
				applyCintasCategory(&it, m[1])
				items = append(items, it)
			}
			continue
		}

		if m := reCintasNoSKU.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[2])
			unit, _ := parseMoneyDecimal(m[4])
			totalCents, _ := parseMoney(m[5])
			if it, ok := buildItem(m[3], "", qty, unit, totalCents, ml.Source, StrategyCintas); ok && totalCents > 0 {
				applyCintasCategory(&it, m[1])
				items = append(items, it)
			}
		}
	}

	c := newCandidate(ctx, StrategyCintas, items, true)
	c.Vendor = VendorIdentity{Key: VendorCintas, DisplayName: "Cintas Corporation", Confidence: ctx.vendor.Confidence}
	return c
}

func applyCintasCategory(it *LineItem, letter string) {
	if cat, ok := cintasCategories[strings.ToUpper(letter)]; ok {
		it.ProductCategory = cat
		it.PricingType = "rental"
	}
}
