package invoicetext

import (
	"encoding/json"
	"strings"
	"testing"
)

var cintasInvoice = strings.Join([]string{
	"CINTAS CORPORATION",
	"UNIFORM RENTAL AND FACILITY SERVICES",
	"INVOICE NO: 4785123",
	"DATE: 06/15/2025",
	"SOLD TO: POCOMOKE DINER",
	"",
	"C 16 2175 MAT 4X6 BLACK  100.000  1600.00",
	"C 2 0950 SHOP TOWEL RED  133.710  267.42",
	"",
	"SUBTOTAL",
	"SALES TAX",
	"TOTAL USD",
	"1867.42",
	"130.72",
	"1998.14",
}, "\n")

func TestParseCintasStackedTotals(t *testing.T) {
	res := Parse(cintasInvoice, DefaultOptions())

	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}
	if res.Vendor.Key != VendorCintas {
		t.Errorf("vendor = %s, want cintas", res.Vendor.Key)
	}
	if res.Totals.SubtotalCents != 186742 {
		t.Errorf("subtotal = %d, want 186742", res.Totals.SubtotalCents)
	}
	if res.Totals.TaxCents != 13072 {
		t.Errorf("tax = %d, want 13072", res.Totals.TaxCents)
	}
	if res.Totals.TotalCents != 199814 {
		t.Errorf("total = %d, want 199814", res.Totals.TotalCents)
	}
	if len(res.LineItems) != 2 {
		t.Fatalf("items = %d, want 2: %+v", len(res.LineItems), res.LineItems)
	}
	for _, it := range res.LineItems {
		if !it.MathValidated {
			t.Errorf("item %q failed math validation", it.Description)
		}
	}
	if res.Header.InvoiceNumber != "4785123" {
		t.Errorf("invoice number = %q", res.Header.InvoiceNumber)
	}
}

func TestParseSubtotalNeverEmittedAsTotal(t *testing.T) {
	text := strings.Join([]string{
		"CINTAS CORPORATION",
		"C 16 2175 MAT 4X6 BLACK  100.000  1600.00",
		"SUBTOTAL 1867.42",
		"some unrelated footer",
		"TOTAL USD 1998.14",
	}, "\n")

	res := Parse(text, DefaultOptions())
	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}
	if res.Totals.TotalCents != 199814 {
		t.Errorf("total = %d, want 199814 (never the subtotal)", res.Totals.TotalCents)
	}
	if res.Totals.TotalCents == 186742 {
		t.Error("subtotal emitted as total")
	}
}

func TestParseSyntheticAdjustment(t *testing.T) {
	text := strings.Join([]string{
		"ACME SUPPLY CO",
		"INVOICE NO: 555123",
		"DATE: 03/02/2025",
		"",
		"2 WIDGET ALPHA  250.00  500.00",
		"SALES TAX 40.00",
		"TOTAL USD 550.00",
	}, "\n")

	res := Parse(text, DefaultOptions())
	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}
	if res.Totals.TotalCents != 55000 {
		t.Errorf("total = %d, want 55000", res.Totals.TotalCents)
	}

	var synthetic []Adjustment
	for _, a := range res.Adjustments {
		if a.Synthetic {
			synthetic = append(synthetic, a)
		}
	}
	if len(synthetic) != 1 {
		t.Fatalf("want exactly one synthetic adjustment, got %+v", res.Adjustments)
	}
	if synthetic[0].AmountCents != 1000 {
		t.Errorf("synthetic amount = %d, want 1000", synthetic[0].AmountCents)
	}
	if synthetic[0].Description != "Reconciliation residual" {
		t.Errorf("description = %q", synthetic[0].Description)
	}

	// The reconciliation identity holds exactly after the synthetic entry.
	var itemSum int64
	for _, it := range res.LineItems {
		itemSum += it.LineTotalCents
	}
	if itemSum+res.Totals.TaxCents+res.Totals.AdjustmentsCents != res.Totals.PrintedTotalCents {
		t.Error("reconciliation identity violated")
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n\t"} {
		res := Parse(raw, DefaultOptions())
		if res.Success {
			t.Errorf("Parse(%q) succeeded", raw)
		}
		if res.Error != ErrEmptyInput {
			t.Errorf("Parse(%q) error = %q, want %q", raw, res.Error, ErrEmptyInput)
		}
		if len(res.LineItems) != 0 || len(res.Adjustments) != 0 {
			t.Error("empty input must yield empty arrays")
		}
	}
}

func TestParseNoValidContent(t *testing.T) {
	res := Parse("hello there\nnothing invoice-like here\n", DefaultOptions())
	if res.Success {
		t.Fatal("prose must not parse")
	}
	if res.Error != ErrNoValidParse {
		t.Errorf("error = %q, want %q", res.Error, ErrNoValidParse)
	}
}

func TestParseStrictWithoutVendor(t *testing.T) {
	opts := DefaultOptions()
	opts.Strict = true
	res := Parse("2 WIDGET ALPHA  250.00  500.00\nTOTAL USD 500.00\n", opts)
	if res.Success {
		t.Error("strict mode with no detectable vendor must fail")
	}
}

func TestParseVendorHint(t *testing.T) {
	text := strings.Join([]string{
		"C 16 2175 MAT 4X6 BLACK  100.000  1600.00",
		"TOTAL USD 1600.00",
	}, "\n")

	opts := DefaultOptions()
	opts.VendorHint = "cintas"
	res := Parse(text, opts)
	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}
	if res.Vendor.Key != VendorCintas {
		t.Errorf("vendor = %s, want cintas via hint", res.Vendor.Key)
	}
}

func TestParseDeterministic(t *testing.T) {
	a := mustJSON(t, Parse(cintasInvoice, DefaultOptions()))
	b := mustJSON(t, Parse(cintasInvoice, DefaultOptions()))
	if a != b {
		t.Error("identical input produced different results")
	}
}

func TestParseTrailingWhitespaceInvariant(t *testing.T) {
	a := mustJSON(t, Parse(cintasInvoice, DefaultOptions()))
	b := mustJSON(t, Parse(cintasInvoice+"   \n\n", DefaultOptions()))
	if a != b {
		t.Error("trailing whitespace changed the result")
	}
}

func TestParseNormalizeRoundTrip(t *testing.T) {
	normalized := Normalize(cintasInvoice).Normalized
	a := mustJSON(t, Parse(cintasInvoice, DefaultOptions()))
	b := mustJSON(t, Parse(normalized, DefaultOptions()))
	if a != b {
		t.Error("parsing pre-normalized text changed the result")
	}
}

func TestParseInvariantsOnEmittedItems(t *testing.T) {
	res := Parse(cintasInvoice, DefaultOptions())
	for _, it := range res.LineItems {
		if len(it.Description) < 3 {
			t.Errorf("item description too short: %q", it.Description)
		}
		if it.Quantity < 1 {
			t.Errorf("item quantity < 1: %+v", it)
		}
		if it.LineTotalCents < 0 {
			t.Errorf("negative line total: %+v", it)
		}
		if rule := garbageRuleFor(it, res.Totals, len(res.LineItems)); rule != nil {
			t.Errorf("emitted item %q matches garbage rule %s", it.Description, rule.Name)
		}
	}
	var adjSum int64
	for _, a := range res.Adjustments {
		adjSum += a.AmountCents
	}
	if adjSum != res.Totals.AdjustmentsCents {
		t.Errorf("adjustmentsCents %d != sum %d", res.Totals.AdjustmentsCents, adjSum)
	}
}

func TestParseDebugBlock(t *testing.T) {
	opts := DefaultOptions()
	opts.Debug = true
	res := Parse(cintasInvoice, opts)
	if res.Debug == nil {
		t.Fatal("debug block missing")
	}
	if res.Debug.OriginalText != cintasInvoice {
		t.Error("debug block must carry the original text")
	}
	if len(res.Debug.CandidateScores) == 0 {
		t.Error("debug block must list candidate scores")
	}
	if res.Debug.ParseID == "" {
		t.Error("debug block must carry a parse id")
	}

	// Re-parsing the original text from the debug block reproduces the
	// result.
	again := Parse(res.Debug.OriginalText, DefaultOptions())
	if mustJSON(t, again) != mustJSON(t, Parse(cintasInvoice, DefaultOptions())) {
		t.Error("re-parsing the debug original diverged")
	}
}

func TestParseDeterministicWithDebug(t *testing.T) {
	opts := DefaultOptions()
	opts.Debug = true
	a := mustJSON(t, Parse(cintasInvoice, opts))
	b := mustJSON(t, Parse(cintasInvoice, opts))
	if a != b {
		t.Error("identical input produced different debug results")
	}
}

func TestParseGarbageLinesExcluded(t *testing.T) {
	text := strings.Join([]string{
		"CINTAS CORPORATION",
		"C 16 2175 MAT 4X6 BLACK  100.000  1600.00",
		"ORDER SUMMARY 12345  129.00",
		"POCOMOKE CITY MD 21851  45.00",
		"TOTAL USD 1600.00",
	}, "\n")

	res := Parse(text, DefaultOptions())
	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}
	for _, it := range res.LineItems {
		upper := strings.ToUpper(it.Description)
		if strings.Contains(upper, "ORDER SUMMARY") || strings.Contains(upper, "POCOMOKE") {
			t.Errorf("garbage line emitted as item: %q", it.Description)
		}
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
