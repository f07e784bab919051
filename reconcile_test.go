package invoicetext

import (
	"testing"
)

func totalCandidate(label TotalLabel, cents int64, priority int) TotalCandidate {
	return TotalCandidate{Label: label, ValueCents: cents, Priority: priority, Score: 90, Layout: LayoutSameLine}
}

func TestReconcileWithinTolerance(t *testing.T) {
	c := reconcilingCandidate(StrategyCintas, true)
	ranked := []TotalCandidate{
		totalCandidate(LabelSubtotal, 186742, 1),
		totalCandidate(LabelTotalUSD, 199814, 1),
	}

	Reconcile(c, ranked)

	if c.Totals.TotalCents != 199814 {
		t.Errorf("authoritative total = %d, want 199814", c.Totals.TotalCents)
	}
	for _, a := range c.Adjustments {
		if a.Synthetic {
			t.Errorf("no synthetic adjustment expected: %+v", a)
		}
	}
	if c.Totals.ComputedTotalCents != 199814 {
		t.Errorf("computed total = %d, want 199814", c.Totals.ComputedTotalCents)
	}
}

func TestReconcileSyntheticAdjustment(t *testing.T) {
	// Items $500.00, tax $40.00, no fees, printed TOTAL USD 550.00:
	// exactly one synthetic adjustment of $10.00.
	c := &ParseCandidate{
		Items:  []LineItem{centsItem("WIDGET ALPHA", 2, "250.00", 50000)},
		Totals: Totals{TaxCents: 4000, Currency: "USD"},
	}
	ranked := []TotalCandidate{totalCandidate(LabelTotalUSD, 55000, 1)}

	Reconcile(c, ranked)

	var synthetic []Adjustment
	for _, a := range c.Adjustments {
		if a.Synthetic {
			synthetic = append(synthetic, a)
		}
	}
	if len(synthetic) != 1 {
		t.Fatalf("want exactly one synthetic adjustment, got %d", len(synthetic))
	}
	if synthetic[0].AmountCents != 1000 {
		t.Errorf("synthetic amount = %d, want 1000", synthetic[0].AmountCents)
	}
	if synthetic[0].Description != "Reconciliation residual" {
		t.Errorf("synthetic description = %q", synthetic[0].Description)
	}
	if synthetic[0].Kind != AdjustmentSynthetic {
		t.Errorf("synthetic kind = %s", synthetic[0].Kind)
	}
	if c.Totals.TotalCents != 55000 {
		t.Errorf("authoritative total = %d, want 55000", c.Totals.TotalCents)
	}
	// With the synthetic adjustment the books close exactly.
	if c.Totals.ComputedTotalCents != 55000 {
		t.Errorf("computed after reconciliation = %d, want 55000", c.Totals.ComputedTotalCents)
	}
}

func TestReconcileSyntheticCredit(t *testing.T) {
	c := &ParseCandidate{
		Items:  []LineItem{centsItem("WIDGET ALPHA", 2, "250.00", 50000)},
		Totals: Totals{TaxCents: 4000, Currency: "USD"},
	}
	ranked := []TotalCandidate{totalCandidate(LabelTotalUSD, 52000, 1)}

	Reconcile(c, ranked)

	if c.Totals.TotalCents != 52000 {
		t.Errorf("printed total must win: %d", c.Totals.TotalCents)
	}
	found := false
	for _, a := range c.Adjustments {
		if a.Synthetic && a.AmountCents == -2000 {
			found = true
		}
	}
	if !found {
		t.Errorf("want a synthetic credit of -2000, got %+v", c.Adjustments)
	}
}

func TestReconcileNoPrintedTotal(t *testing.T) {
	c := &ParseCandidate{
		Items:  []LineItem{centsItem("WIDGET ALPHA", 2, "250.00", 50000)},
		Totals: Totals{TaxCents: 4000, Currency: "USD"},
	}

	Reconcile(c, nil)

	if c.Totals.TotalCents != 54000 {
		t.Errorf("computed total must be authoritative: %d", c.Totals.TotalCents)
	}
	foundWarning := false
	for _, w := range c.Report.Warnings {
		if w == issue(VRR2, "") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Errorf("missing no-printed-total warning: %v", c.Report.Warnings)
	}
}

func TestPickPrintedTotalSkipsBelowSubtotal(t *testing.T) {
	ranked := []TotalCandidate{
		totalCandidate(LabelOther, 45000, 4),      // a group-ish figure below subtotal
		totalCandidate(LabelTotalUSD, 199814, 1),
	}
	rankCandidates(ranked)

	printed, _, ok := pickPrintedTotal(ranked, 186742)
	if !ok || printed != 199814 {
		t.Errorf("printed = %d (ok=%t), want 199814", printed, ok)
	}
}

func TestReconcileToleranceBands(t *testing.T) {
	tests := []struct {
		printed int64
		want    int64
	}{
		{1000, 10},   // 10 cent floor
		{2000, 10},   // 0.5% = 10, floor ties
		{100000, 500}, // 0.5%
	}
	for _, tc := range tests {
		if got := reconcileTolerance(tc.printed); got != tc.want {
			t.Errorf("reconcileTolerance(%d) = %d, want %d", tc.printed, got, tc.want)
		}
	}
}
