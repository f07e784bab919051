package invoicetext

import (
	"regexp"
)

// Sysco foodservice invoices: quantity and unit on the left, seven-digit
// item codes, case/split pricing, fuel surcharges, and a TOTAL DUE block.

const StrategySysco = "vendor-sysco"

var (
	// "5 CS 1234567 CHICKEN BREAST 40Z  45.67  228.35"
	reSyscoFull = regexp.MustCompile(`^\s*(\d{1,3})\s+(CS|EA|LB|GAL|CT|DOZ|PK|BX)?\s*(\d{7})\s+(.+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
	// Split-case rows drop the unit token: "2 1234567 OLIVE OIL BLEND  88.20  176.40"
	reSyscoBare = regexp.MustCompile(`^\s*(\d{1,3})\s+(\d{7})\s+(.+?)\s+\$?([\d,]+\.\d{2,3})\s+\$?([\d,]+\.\d{2})\s*$`)
)

// parseSysco reads a Sysco-layout document.
func parseSysco(ctx *strategyContext) *ParseCandidate {
	var items []LineItem
	for _, ml := range ctx.merged {
		if isSummaryLine(ml.Text) {
			continue
		}

		if m := reSyscoFull.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[1])
			unit, _ := parseMoneyDecimal(m[5])
			totalCents, _ := parseMoney(m[6])
			if it, ok := buildItem(m[4], m[3], qty, unit, totalCents, ml.Source, StrategySysco); ok && totalCents > 0 {
				it.DetectedUnits = m[2]
				it.PricingType = "case"
				if m[2] == "EA" {
					it.PricingType = "each"
				}
				items = append(items, it)
			}
			continue
		}

		if m := reSyscoBare.FindStringSubmatch(ml.Text); m != nil {
			qty, _ := parseQty(m[1])
			unit, _ := parseMoneyDecimal(m[4])
			totalCents, _ := parseMoney(m[5])
			if it, ok := buildItem(m[3], m[2], qty, unit, totalCents, ml.Source, StrategySysco); ok && totalCents > 0 {
				items = append(items, it)
			}
		}
	}

	c := newCandidate(ctx, StrategySysco, items, true)
	c.Vendor = VendorIdentity{Key: VendorSysco, DisplayName: "Sysco Corporation", Confidence: ctx.vendor.Confidence}
	return c
}
