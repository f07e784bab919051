package invoicetext

import (
	"regexp"
	"strings"
)

// The garbage filter is the last line of defense: whatever survived the
// strategies and the chooser still gets checked against patterns that are
// never products — addresses, order-summary numbers, totals captured as
// items, absurd amounts.

// absurdAmountCents rejects any single line over $20,000.00.
const absurdAmountCents = 2_000_000

var (
	reStateZip     = regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)
	reStreetSuffix = regexp.MustCompile(`(?i)\b(STREET|AVENUE|BOULEVARD|DRIVE|LANE|ROAD|HIGHWAY|PKWY|PARKWAY|SUITE|STE|BLVD|AVE|HWY|RD|P\.?O\.?\s*BOX)\b`)
	reCityToken    = regexp.MustCompile(`(?i)\b(CITY|TOWNSHIP|HEIGHTS|SPRINGS|JUNCTION)\b`)
	reStandaloneTax = regexp.MustCompile(`(?i)^\s*TAX\s*$|\bTAX\b\s*$`)

	garbagePhrases = []string{
		"ORDER SUMMARY", "MISC CHARGES", "FUEL SURCHARGE",
		"CHGS FOR", "ALLOWANCE FOR", "DROP SIZE",
	}
)

// garbageRule names one rejection pattern so the debug trace can say why
// an item disappeared.
type garbageRule struct {
	Name  string
	Match func(item LineItem, totals Totals, itemCount int) bool
}

var garbageRules = []garbageRule{
	{
		Name: "absurd-amount",
		Match: func(it LineItem, _ Totals, _ int) bool {
			return it.LineTotalCents > absurdAmountCents
		},
	},
	{
		Name: "empty-description",
		Match: func(it LineItem, _ Totals, _ int) bool {
			d := strings.TrimSpace(it.Description)
			return d == "" || d == "$" || len(d) <= 2
		},
	},
	{
		Name: "summary-phrase",
		Match: func(it LineItem, _ Totals, _ int) bool {
			upper := strings.ToUpper(it.Description)
			for _, p := range garbagePhrases {
				if strings.Contains(upper, p) {
					return true
				}
			}
			return false
		},
	},
	{
		Name: "standalone-tax",
		Match: func(it LineItem, _ Totals, _ int) bool {
			return reStandaloneTax.MatchString(strings.ToUpper(strings.TrimSpace(it.Description)))
		},
	},
	{
		Name: "address-line",
		Match: func(it LineItem, _ Totals, _ int) bool {
			d := strings.ToUpper(it.Description)
			return reStateZip.MatchString(d) || reStreetSuffix.MatchString(d) || reCityToken.MatchString(d)
		},
	},
	{
		Name: "total-in-description",
		Match: func(it LineItem, _ Totals, _ int) bool {
			upper := strings.ToUpper(it.Description)
			if !strings.Contains(upper, "TOTAL") {
				return false
			}
			return !strings.Contains(upper, "TOTAL CASE")
		},
	},
	{
		Name: "singleton-total-echo",
		Match: func(it LineItem, totals Totals, itemCount int) bool {
			if itemCount != 1 || totals.PrintedTotalCents == 0 {
				return false
			}
			if it.LineTotalCents != totals.PrintedTotalCents {
				return false
			}
			return !looksLikeProduct(it.Description)
		},
	},
}

// garbageRuleFor returns the first rule rejecting the item, or nil.
func garbageRuleFor(item LineItem, totals Totals, itemCount int) *garbageRule {
	for i := range garbageRules {
		if garbageRules[i].Match(item, totals, itemCount) {
			return &garbageRules[i]
		}
	}
	return nil
}

// isGroupSubtotalItem reports whether an item is really a group, section,
// category or department subtotal captured as a product row.
func isGroupSubtotalItem(item LineItem) bool {
	upper := strings.ToUpper(item.Description)
	if !strings.Contains(upper, "TOTAL") && !strings.Contains(upper, "SUBTOTAL") {
		if strings.Contains(upper, "****") {
			return true
		}
		return false
	}
	return strings.Contains(upper, "GROUP") ||
		strings.Contains(upper, "CATEGORY") ||
		strings.Contains(upper, "SECTION") ||
		strings.Contains(upper, "DEPT")
}

// looksLikeProduct is a weak positive signal: at least two alphabetic
// words and no total/summary vocabulary.
func looksLikeProduct(description string) bool {
	upper := strings.ToUpper(description)
	if strings.Contains(upper, "TOTAL") || strings.Contains(upper, "SUMMARY") ||
		strings.Contains(upper, "BALANCE") || strings.Contains(upper, "DUE") {
		return false
	}
	words := 0
	for _, w := range strings.Fields(description) {
		letters := 0
		for _, r := range w {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				letters++
			}
		}
		if letters >= 2 {
			words++
		}
	}
	return words >= 2
}

// FilterGarbage removes rejected items, renumbering the survivors. The
// names of the rules that fired come back for the debug trace.
func FilterGarbage(items []LineItem, totals Totals) ([]LineItem, []string) {
	var fired []string
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		if rule := garbageRuleFor(it, totals, len(items)); rule != nil {
			fired = append(fired, rule.Name+": "+strings.TrimSpace(it.Description))
			continue
		}
		if isGroupSubtotalItem(it) {
			fired = append(fired, "group-subtotal: "+strings.TrimSpace(it.Description))
			continue
		}
		out = append(out, it)
	}
	for i := range out {
		out[i].LineNumber = i + 1
	}
	return out, fired
}
