package invoicetext

import (
	"strings"
	"testing"
)

func extract(t *testing.T, text string) []TotalCandidate {
	t.Helper()
	return ExtractTotals(Normalize(text))
}

func findCandidate(cands []TotalCandidate, label TotalLabel) *TotalCandidate {
	for i := range cands {
		if cands[i].Label == label {
			return &cands[i]
		}
	}
	return nil
}

func TestTotalsSameLine(t *testing.T) {
	cands := extract(t, "some items here\nTOTAL USD 1998.14\n")
	c := findCandidate(cands, LabelTotalUSD)
	if c == nil {
		t.Fatalf("TOTAL USD not found: %+v", cands)
	}
	if c.ValueCents != 199814 {
		t.Errorf("value = %d, want 199814", c.ValueCents)
	}
	if c.Layout != LayoutSameLine {
		t.Errorf("layout = %s, want %s", c.Layout, LayoutSameLine)
	}
	if c.Priority != 1 {
		t.Errorf("priority = %d, want 1", c.Priority)
	}
}

func TestTotalsSplitLine(t *testing.T) {
	cands := extract(t, "TOTAL USD\n1998.14\n")
	c := findCandidate(cands, LabelTotalUSD)
	if c == nil || c.ValueCents != 199814 {
		t.Fatalf("split-line TOTAL USD not extracted: %+v", cands)
	}
	if c.Layout != LayoutSplitLine {
		t.Errorf("layout = %s, want %s", c.Layout, LayoutSplitLine)
	}
}

func TestTotalsStackedLabelColumn(t *testing.T) {
	cands := extract(t, strings.Join([]string{
		"SUBTOTAL",
		"SALES TAX",
		"TOTAL USD",
		"1867.42",
		"130.72",
		"1998.14",
	}, "\n"))

	sub := findCandidate(cands, LabelSubtotal)
	tax := findCandidate(cands, LabelTax)
	tot := findCandidate(cands, LabelTotalUSD)
	if sub == nil || tax == nil || tot == nil {
		t.Fatalf("stacked column not fully extracted: %+v", cands)
	}
	if sub.ValueCents != 186742 || tax.ValueCents != 13072 || tot.ValueCents != 199814 {
		t.Errorf("values = %d/%d/%d, want 186742/13072/199814",
			sub.ValueCents, tax.ValueCents, tot.ValueCents)
	}
	if tot.Layout != LayoutStacked {
		t.Errorf("layout = %s, want %s", tot.Layout, LayoutStacked)
	}
}

func TestTotalsAlternatingPairs(t *testing.T) {
	cands := extract(t, strings.Join([]string{
		"SUBTOTAL",
		"1867.42",
		"SALES TAX",
		"130.72",
		"TOTAL USD",
		"1998.14",
	}, "\n"))

	tot := findCandidate(cands, LabelTotalUSD)
	if tot == nil || tot.ValueCents != 199814 {
		t.Fatalf("alternating TOTAL USD not extracted: %+v", cands)
	}
	if tot.Layout != LayoutAlternating {
		t.Errorf("layout = %s, want %s", tot.Layout, LayoutAlternating)
	}
	sub := findCandidate(cands, LabelSubtotal)
	if sub == nil || sub.ValueCents != 186742 {
		t.Errorf("alternating SUBTOTAL missing: %+v", cands)
	}
}

func TestTotalsHorizontalHeader(t *testing.T) {
	cands := extract(t, "SUBTOTAL   SALES TAX   TOTAL USD\n1867.42   130.72   1998.14\n")

	tot := findCandidate(cands, LabelTotalUSD)
	if tot == nil || tot.ValueCents != 199814 {
		t.Fatalf("horizontal TOTAL USD not extracted: %+v", cands)
	}
	if tot.Layout != LayoutHorizontal {
		t.Errorf("layout = %s, want %s", tot.Layout, LayoutHorizontal)
	}
	if sub := findCandidate(cands, LabelSubtotal); sub == nil || sub.ValueCents != 186742 {
		t.Errorf("horizontal SUBTOTAL missing: %+v", cands)
	}
}

func TestTotalsGroupRejection(t *testing.T) {
	cands := extract(t, "GROUP TOTAL 450.00\nTOTAL USD 1998.14\n")

	for _, c := range cands {
		if c.ValueCents == 45000 && isTotalLabel(c.Label) {
			t.Errorf("group total must be rejected: %+v", c)
		}
	}
	if c := findCandidate(cands, LabelTotalUSD); c == nil || c.ValueCents != 199814 {
		t.Errorf("real total lost alongside group rejection: %+v", cands)
	}
}

func TestTotalsDeptAndSectionRejection(t *testing.T) {
	for _, ctx := range []string{"DEPT 12 TOTAL 99.00", "SECTION TOTAL 99.00", "**** TOTAL 99.00"} {
		cands := extract(t, ctx+"\n")
		for _, c := range cands {
			if isTotalLabel(c.Label) {
				t.Errorf("%q produced a total candidate: %+v", ctx, c)
			}
		}
	}
}

func TestSelectTotalsSubtotalNeverWins(t *testing.T) {
	// Scenario: bare TOTAL repeats the subtotal while TOTAL USD carries
	// the real figure.
	cands := extract(t, strings.Join([]string{
		"SUBTOTAL 1867.42",
		"TOTAL 1867.42",
		"TOTAL USD 1998.14",
	}, "\n"))

	sub, _, printed, found := selectTotals(cands)
	if !found {
		t.Fatal("no total selected")
	}
	if sub != 186742 {
		t.Errorf("subtotal = %d, want 186742", sub)
	}
	if printed != 199814 {
		t.Errorf("printed total = %d, want 199814 (never the subtotal)", printed)
	}
}

func TestSelectTotalsPriorityOrder(t *testing.T) {
	cands := extract(t, "TOTAL DUE 500.00\nGRAND TOTAL 510.00\n")
	_, _, printed, found := selectTotals(cands)
	if !found || printed != 51000 {
		t.Errorf("printed = %d (found=%t), want GRAND TOTAL 51000", printed, found)
	}
}

func TestTotalsValueWindow(t *testing.T) {
	// A label whose nearest money sits far outside the window must not
	// pair with it.
	lines := []string{"TOTAL USD"}
	for i := 0; i < 10; i++ {
		lines = append(lines, "unrelated prose without numbers")
	}
	lines = append(lines, "1998.14")
	cands := extract(t, strings.Join(lines, "\n"))
	if c := findCandidate(cands, LabelTotalUSD); c != nil {
		t.Errorf("label paired with money %d lines away: %+v", 11, c)
	}
}
