package invoicetext

import (
	"fmt"
	"sort"
)

// The validator scores every candidate against a weighted rubric and the
// chooser keeps the best one. The rubric rewards internal consistency —
// printed total sanity, item-sum reconciliation, plausible tax, header
// completeness, per-item math — and penalizes group-subtotal
// contamination, garbage items and large variance.

// Rubric weights. The base scores sum to 100 before penalties and the
// vendor bonus.
const (
	maxPrintedTotalScore = 35
	maxItemsSumScore     = 25
	maxAdjustmentsScore  = 15
	maxHeaderScore       = 10
	maxItemQualityScore  = 15

	vendorBonus = 10

	penaltyPerContaminated = 8
	maxContaminationPenalty = 25
	garbagePenalty          = 15
	variancePenalty         = 20
)

// validateCandidate scores one candidate and fills in its report.
func validateCandidate(c *ParseCandidate) {
	report := ValidationReport{
		Issues:   []string{},
		Warnings: []string{},
		Breakdown: ScoreBreakdown{
			Details: map[string]string{},
		},
	}

	checkPrintedTotal(c, &report)
	checkItemsSum(c, &report)
	checkAdjustments(c, &report)
	checkHeader(c, &report)
	checkItemQuality(c, &report)
	applyPenalties(c, &report)

	score := report.Breakdown.PrintedTotalScore +
		report.Breakdown.ItemsSumScore +
		report.Breakdown.AdjustmentsScore +
		report.Breakdown.HeaderScore +
		report.Breakdown.LineItemQualityScore -
		report.Breakdown.Penalties

	// Vendor bonus: a vendor-specific parse that produced a real total
	// and at least one arithmetically sound item outranks the generic
	// parse of the same document.
	if c.VendorSpecific && c.Totals.PrintedTotalCents != 0 && anyMathValidated(c.Items) {
		score += vendorBonus
		report.Breakdown.Details["vendorBonus"] = fmt.Sprintf("+%d", vendorBonus)
	}

	if score < 0 {
		score = 0
	}
	report.Score = score
	report.IsValid = len(report.Issues) == 0 && score >= 50
	c.Score = score
	c.Report = report
}

func anyMathValidated(items []LineItem) bool {
	for _, it := range items {
		if it.MathValidated {
			return true
		}
	}
	return false
}

// checkPrintedTotal verifies subtotal + tax against the printed total.
func checkPrintedTotal(c *ParseCandidate, report *ValidationReport) {
	t := c.Totals
	if t.PrintedTotalCents == 0 {
		report.Issues = append(report.Issues, issue(VRT1, ""))
		report.Breakdown.Details["printedTotal"] = "missing"
		return
	}
	if t.SubtotalCents == 0 {
		// Nothing to cross-check against; half credit.
		report.Breakdown.PrintedTotalScore = maxPrintedTotalScore / 2
		report.Breakdown.Details["printedTotal"] = "no subtotal to verify against"
		return
	}

	expected := t.SubtotalCents + t.TaxCents
	switch {
	case withinPct(expected, t.PrintedTotalCents, 1):
		report.Breakdown.PrintedTotalScore = maxPrintedTotalScore
	case withinPct(expected, t.PrintedTotalCents, 5):
		report.Breakdown.PrintedTotalScore = maxPrintedTotalScore - 5
		report.Warnings = append(report.Warnings, issue(VRT2, "within 5%"))
	case withinPct(expected, t.PrintedTotalCents, 15):
		report.Breakdown.PrintedTotalScore = maxPrintedTotalScore - 15
		report.Warnings = append(report.Warnings, issue(VRT2, "within 15%"))
	default:
		report.Breakdown.PrintedTotalScore = 5
		report.Issues = append(report.Issues, issue(VRT2,
			fmt.Sprintf("subtotal+tax %d vs printed %d", expected, t.PrintedTotalCents)))
	}
}

// checkItemsSum verifies the line-item sum against the subtotal, falling
// back to the printed total when no subtotal was extracted.
func checkItemsSum(c *ParseCandidate, report *ValidationReport) {
	if len(c.Items) == 0 {
		report.Breakdown.Details["itemsSum"] = "no items"
		return
	}
	var sum int64
	for _, it := range c.Items {
		sum += it.LineTotalCents
	}

	ref := c.Totals.SubtotalCents
	refName := "subtotal"
	if ref == 0 {
		ref = c.Totals.PrintedTotalCents
		refName = "total"
	}
	if ref == 0 {
		report.Breakdown.ItemsSumScore = maxItemsSumScore / 2
		report.Breakdown.Details["itemsSum"] = "no reference figure"
		return
	}

	switch {
	case withinPct(sum, ref, 1):
		report.Breakdown.ItemsSumScore = maxItemsSumScore
	case withinPct(sum, ref, 5):
		report.Breakdown.ItemsSumScore = maxItemsSumScore - 5
		report.Warnings = append(report.Warnings, issue(VRI1, "within 5% of "+refName))
	case withinPct(sum, ref, 15):
		report.Breakdown.ItemsSumScore = maxItemsSumScore - 15
		report.Warnings = append(report.Warnings, issue(VRI1, "within 15% of "+refName))
	default:
		report.Breakdown.ItemsSumScore = 0
		report.Issues = append(report.Issues, issue(VRI1,
			fmt.Sprintf("items sum %d vs %s %d", sum, refName, ref)))
	}
	report.Breakdown.Details["itemsSum"] = fmt.Sprintf("%d vs %s %d", sum, refName, ref)
}

// checkAdjustments verifies that tax exists and sits in a plausible band
// relative to the subtotal.
func checkAdjustments(c *ParseCandidate, report *ValidationReport) {
	t := c.Totals
	if t.TaxCents == 0 {
		report.Breakdown.AdjustmentsScore = maxAdjustmentsScore / 3
		report.Warnings = append(report.Warnings, issue(VRA2, ""))
		return
	}
	if t.SubtotalCents <= 0 {
		report.Breakdown.AdjustmentsScore = maxAdjustmentsScore / 2
		return
	}
	ratio := float64(t.TaxCents) / float64(t.SubtotalCents)
	if ratio >= 0.005 && ratio <= 0.15 {
		report.Breakdown.AdjustmentsScore = maxAdjustmentsScore
		return
	}
	report.Breakdown.AdjustmentsScore = maxAdjustmentsScore / 2
	report.Warnings = append(report.Warnings, issue(VRA1,
		fmt.Sprintf("tax/subtotal ratio %.3f", ratio)))
}

// checkHeader awards 2.5 points per present header field, rounded into
// integer arithmetic: invoice number, date, vendor, customer.
func checkHeader(c *ParseCandidate, report *ValidationReport) {
	quarters := 0
	if c.Header.InvoiceNumber != "" {
		quarters++
	}
	if c.Header.InvoiceDate != "" {
		quarters++
	}
	if c.Vendor.Key != VendorUnknown && c.Vendor.Key != VendorGeneric || c.Header.SoldTo != "" {
		quarters++
	}
	if c.Header.CustomerName != "" || c.Header.BillTo != "" || c.Header.ShipTo != "" {
		quarters++
	}
	report.Breakdown.HeaderScore = quarters * maxHeaderScore / 4
	if quarters < 2 {
		report.Warnings = append(report.Warnings, issue(VRH1, ""))
	}
}

// checkItemQuality scores the fraction of items passing math validation.
func checkItemQuality(c *ParseCandidate, report *ValidationReport) {
	if len(c.Items) == 0 {
		return
	}
	valid, corrected := 0, 0
	for _, it := range c.Items {
		if it.MathValidated {
			valid++
		}
		if it.MathCorrected {
			corrected++
		}
	}
	report.Breakdown.LineItemQualityScore = valid * maxItemQualityScore / len(c.Items)
	if corrected > 0 {
		report.Warnings = append(report.Warnings, issue(VRI3,
			fmt.Sprintf("%d corrected", corrected)))
	}
	if valid*2 < len(c.Items) {
		report.Issues = append(report.Issues, issue(VRI2,
			fmt.Sprintf("%d of %d valid", valid, len(c.Items))))
	}
}

// applyPenalties charges for group-subtotal contamination, garbage items
// and large computed-vs-printed variance.
func applyPenalties(c *ParseCandidate, report *ValidationReport) {
	penalties := 0

	contaminated := 0
	garbage := 0
	for _, it := range c.Items {
		if isGroupSubtotalItem(it) {
			contaminated++
		} else if garbageRuleFor(it, c.Totals, len(c.Items)) != nil {
			garbage++
		}
	}
	if contaminated > 0 {
		p := contaminated * penaltyPerContaminated
		if p > maxContaminationPenalty {
			p = maxContaminationPenalty
		}
		penalties += p
		report.Issues = append(report.Issues, issue(VRP1,
			fmt.Sprintf("%d items", contaminated)))
	}
	if garbage > 0 {
		penalties += garbagePenalty
		report.Warnings = append(report.Warnings, issue(VRP2,
			fmt.Sprintf("%d items", garbage)))
	}

	if c.Totals.PrintedTotalCents != 0 && len(c.Items) > 0 {
		var sum int64
		for _, it := range c.Items {
			sum += it.LineTotalCents
		}
		computed := sum + c.Totals.TaxCents
		if !withinPct(computed, c.Totals.PrintedTotalCents, 25) {
			penalties += variancePenalty
			report.Issues = append(report.Issues, issue(VRP3,
				fmt.Sprintf("computed %d vs printed %d", computed, c.Totals.PrintedTotalCents)))
		}
	}

	report.Breakdown.Penalties = penalties
}

// chooseCandidate sorts validated candidates and returns the winner.
// Ties break by vendor-specific before generic, then registration order.
// Returns nil when no candidate produced items or a total.
func chooseCandidate(cands []*ParseCandidate) *ParseCandidate {
	var usable []*ParseCandidate
	for _, c := range cands {
		if len(c.Items) > 0 || c.Totals.PrintedTotalCents != 0 {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return nil
	}

	sort.SliceStable(usable, func(i, j int) bool {
		a, b := usable[i], usable[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.VendorSpecific != b.VendorSpecific {
			return a.VendorSpecific
		}
		return a.order < b.order
	})
	return usable[0]
}
