package invoicetext

import (
	"fmt"
)

// The reconciler enforces printed_total ≈ items + tax + adjustments and
// commits a single authoritative total. The printed figure wins whenever
// one exists; residuals the document never explains become synthetic
// adjustments so the books still close.

// syntheticDescription is the fixed description of reconciler-created
// adjustments.
const syntheticDescription = "Reconciliation residual"

// Reconcile mutates the winning candidate's totals and adjustments so
// that the authoritative total holds, and returns the trace lines for
// the debug block.
func Reconcile(c *ParseCandidate, ranked []TotalCandidate) []string {
	var trace []string

	var itemsSum int64
	for _, it := range c.Items {
		itemsSum += it.LineTotalCents
	}
	var adjSum int64
	for _, a := range c.Adjustments {
		adjSum += a.AmountCents
	}
	computed := itemsSum + c.Totals.TaxCents + adjSum
	c.Totals.ComputedTotalCents = computed
	trace = append(trace, fmt.Sprintf("items=%d tax=%d adjustments=%d computed=%d",
		itemsSum, c.Totals.TaxCents, adjSum, computed))

	printed, layout, ok := pickPrintedTotal(ranked, c.Totals.SubtotalCents)
	if !ok {
		c.Totals.TotalCents = computed
		c.Totals.PrintedTotalCents = 0
		c.Report.Warnings = append(c.Report.Warnings, issue(VRR2, ""))
		trace = append(trace, "no printed total; computed total is authoritative")
		c.Totals.AdjustmentsCents = adjSum
		return trace
	}
	c.Totals.PrintedTotalCents = printed
	trace = append(trace, fmt.Sprintf("printed total %d via %s layout", printed, layout))

	residual := printed - computed
	tol := reconcileTolerance(printed)
	switch {
	case absCents(residual) <= tol:
		trace = append(trace, fmt.Sprintf("residual %d within tolerance %d", residual, tol))
	default:
		// The printed total wins; the residual becomes a synthetic
		// adjustment (a credit when the computation overshoots).
		c.Adjustments = append(c.Adjustments, Adjustment{
			Kind:        AdjustmentSynthetic,
			Description: syntheticDescription,
			AmountCents: residual,
			Synthetic:   true,
		})
		adjSum += residual
		c.Totals.ComputedTotalCents = itemsSum + c.Totals.TaxCents + adjSum
		c.Report.Warnings = append(c.Report.Warnings, issue(VRR1,
			fmt.Sprintf("%d cents", residual)))
		trace = append(trace, fmt.Sprintf("synthetic adjustment %d closes residual", residual))
	}

	c.Totals.TotalCents = printed
	c.Totals.AdjustmentsCents = adjSum

	// Note disagreeing lower-priority candidates: a cheap tripwire for
	// layouts the extractor got wrong.
	for _, cand := range ranked {
		if isTotalLabel(cand.Label) && cand.ValueCents != printed && cand.Priority <= 2 {
			c.Report.Warnings = append(c.Report.Warnings, issue(VRR3,
				fmt.Sprintf("%s=%d", cand.Label, cand.ValueCents)))
			break
		}
	}
	return trace
}

// pickPrintedTotal selects the highest-priority total candidate that is
// consistent with the extracted subtotal (printed >= subtotal) and not a
// group figure. Group candidates never reach this point; the extractor
// already rejected them.
func pickPrintedTotal(ranked []TotalCandidate, subtotal int64) (int64, string, bool) {
	for _, cand := range ranked {
		if !isTotalLabel(cand.Label) {
			continue
		}
		if subtotal > 0 && cand.ValueCents < subtotal {
			continue
		}
		return cand.ValueCents, cand.Layout, true
	}
	return 0, "", false
}

// finalizeNumbers assigns display ordinals to items and adjustments.
func finalizeNumbers(c *ParseCandidate) {
	for i := range c.Items {
		c.Items[i].LineNumber = i + 1
	}
	for i := range c.Adjustments {
		c.Adjustments[i].AdjustmentNumber = i + 1
	}
}
