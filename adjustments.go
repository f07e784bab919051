package invoicetext

import (
	"regexp"
	"strings"
)

// The adjustments extractor recognizes fees and credits as signed
// monetary events. Fees are positive, credits negative; both tolerate the
// same label-value layouts the totals extractor handles.

type adjustmentPattern struct {
	re   *regexp.Regexp
	kind AdjustmentKind
	name string
}

var adjustmentPatterns = []adjustmentPattern{
	// Fees.
	{regexp.MustCompile(`(?i)\bFUEL\s+SURCHARGE\b`), AdjustmentFee, "Fuel surcharge"},
	{regexp.MustCompile(`(?i)\bENERGY\s+SURCHARGE\b`), AdjustmentFee, "Energy surcharge"},
	{regexp.MustCompile(`(?i)\bENVIRONMENTAL\s+(FEE|CHARGE)\b`), AdjustmentFee, "Environmental fee"},
	{regexp.MustCompile(`(?i)\bDELIVERY\s+(FEE|CHARGE)\b`), AdjustmentFee, "Delivery fee"},
	{regexp.MustCompile(`(?i)\bROUTE\s+CHARGE\b`), AdjustmentFee, "Route charge"},
	{regexp.MustCompile(`(?i)\bSTOP\s+(FEE|CHARGE)\b`), AdjustmentFee, "Stop charge"},
	{regexp.MustCompile(`(?i)\bHANDLING\s+(FEE|CHARGE)\b`), AdjustmentFee, "Handling fee"},
	{regexp.MustCompile(`(?i)\bSMALL\s+ORDER\s+(FEE|CHARGE)\b`), AdjustmentFee, "Small order fee"},
	{regexp.MustCompile(`(?i)\bRUSH\s+(FEE|CHARGE)\b`), AdjustmentFee, "Rush fee"},
	{regexp.MustCompile(`(?i)\bPALLET\s+(FEE|CHARGE)\b`), AdjustmentFee, "Pallet fee"},
	{regexp.MustCompile(`(?i)\bBOTTLE\s+DEPOSIT\b`), AdjustmentFee, "Bottle deposit"},
	{regexp.MustCompile(`(?i)\bCOLD\s+CHAIN\s+(FEE|CHARGE)\b`), AdjustmentFee, "Cold chain fee"},
	{regexp.MustCompile(`(?i)\bMINIMUM\s+(ORDER\s+)?(FEE|CHARGE)\b`), AdjustmentFee, "Minimum order fee"},
	{regexp.MustCompile(`(?i)\bADMIN(ISTRATIVE)?\s+(FEE|CHARGE)\b`), AdjustmentFee, "Administrative fee"},
	{regexp.MustCompile(`(?i)\bSERVICE\s+(FEE|CHARGE)\b`), AdjustmentFee, "Service charge"},

	// Credits.
	{regexp.MustCompile(`(?i)\bVOLUME\s+DISCOUNT\b`), AdjustmentCredit, "Volume discount"},
	{regexp.MustCompile(`(?i)\bPROMOTIONAL\s+DISCOUNT\b`), AdjustmentCredit, "Promotional discount"},
	{regexp.MustCompile(`(?i)\bCONTRACT\s+DISCOUNT\b`), AdjustmentCredit, "Contract discount"},
	{regexp.MustCompile(`(?i)\bLOYALTY\s+DISCOUNT\b`), AdjustmentCredit, "Loyalty discount"},
	{regexp.MustCompile(`(?i)\bREBATE\b`), AdjustmentCredit, "Rebate"},
	{regexp.MustCompile(`(?i)\bRETURN\s+CREDIT\b`), AdjustmentCredit, "Return credit"},
	{regexp.MustCompile(`(?i)\bPRICE\s+ADJUSTMENT\b`), AdjustmentCredit, "Price adjustment"},
	{regexp.MustCompile(`(?i)\bALLOWANCE\b`), AdjustmentCredit, "Allowance"},
	{regexp.MustCompile(`(?i)\bCUSTOMER\s+CREDIT\b`), AdjustmentCredit, "Customer credit"},
}

// ExtractAdjustments scans the body lines for fee and credit vocabulary
// and returns each match as a signed adjustment. The value may sit on the
// same line or on the next money-only line.
func ExtractAdjustments(doc InvoiceText) []Adjustment {
	var out []Adjustment
	for i, line := range doc.Lines {
		for _, pat := range adjustmentPatterns {
			loc := pat.re.FindStringIndex(line)
			if loc == nil {
				continue
			}

			cents, ok := amountForLabel(doc.Lines, i, loc[1])
			if !ok {
				continue
			}
			if pat.kind == AdjustmentCredit && cents > 0 {
				cents = -cents
			}
			out = append(out, Adjustment{
				Kind:        pat.kind,
				Description: pat.name,
				AmountCents: cents,
				Raw:         strings.TrimSpace(line),
			})
			break // one adjustment per line
		}
	}
	return out
}

// amountForLabel finds the money value belonging to a label: first after
// the label on the same line, then on the first non-blank line within the
// shared value window, provided that line carries exactly one money value
// and nothing else.
func amountForLabel(lines []string, lineIdx, afterCol int) (int64, bool) {
	line := lines[lineIdx]
	if afterCol <= len(line) {
		if tok := reMoneyToken.FindString(line[afterCol:]); tok != "" {
			if cents, ok := parseMoney(tok); ok {
				return cents, true
			}
		}
	}
	for j := lineIdx + 1; j <= lineIdx+valueWindow && j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		vals := moneyOnlyValues(lines[j])
		if len(vals) == 1 {
			return vals[0], true
		}
		break
	}
	return 0, false
}
