package invoicetext

import (
	"strings"
	"testing"
)

func TestExtractAdjustmentsFees(t *testing.T) {
	doc := Normalize(strings.Join([]string{
		"FUEL SURCHARGE 12.50",
		"DELIVERY FEE 15.00",
		"BOTTLE DEPOSIT 2.40",
	}, "\n"))

	adjustments := ExtractAdjustments(doc)
	if len(adjustments) != 3 {
		t.Fatalf("got %d adjustments, want 3: %+v", len(adjustments), adjustments)
	}
	for _, a := range adjustments {
		if a.Kind != AdjustmentFee {
			t.Errorf("%s classified as %s, want fee", a.Description, a.Kind)
		}
		if a.AmountCents <= 0 {
			t.Errorf("fee %s has non-positive amount %d", a.Description, a.AmountCents)
		}
		if a.Synthetic {
			t.Errorf("document adjustment marked synthetic: %+v", a)
		}
	}
}

func TestExtractAdjustmentsCreditsAreNegative(t *testing.T) {
	doc := Normalize("VOLUME DISCOUNT 25.00\nRETURN CREDIT 13.20\n")
	adjustments := ExtractAdjustments(doc)
	if len(adjustments) != 2 {
		t.Fatalf("got %d adjustments, want 2: %+v", len(adjustments), adjustments)
	}
	for _, a := range adjustments {
		if a.Kind != AdjustmentCredit {
			t.Errorf("%s classified as %s, want credit", a.Description, a.Kind)
		}
		if a.AmountCents >= 0 {
			t.Errorf("credit %s must be negative, got %d", a.Description, a.AmountCents)
		}
	}
}

func TestExtractAdjustmentsSplitLineValue(t *testing.T) {
	doc := Normalize("ENVIRONMENTAL FEE\n4.75\n")
	adjustments := ExtractAdjustments(doc)
	if len(adjustments) != 1 || adjustments[0].AmountCents != 475 {
		t.Fatalf("split-line fee not extracted: %+v", adjustments)
	}
}

func TestExtractAdjustmentsTolerant(t *testing.T) {
	doc := Normalize("FUEL SURCHARGE $1,250.00\n")
	adjustments := ExtractAdjustments(doc)
	if len(adjustments) != 1 || adjustments[0].AmountCents != 125000 {
		t.Fatalf("dollar and comma not tolerated: %+v", adjustments)
	}
}

func TestExtractAdjustmentsIgnoresPlainItems(t *testing.T) {
	doc := Normalize("2 1234567 CHICKEN BREAST  45.67  91.34\n")
	if adjustments := ExtractAdjustments(doc); len(adjustments) != 0 {
		t.Errorf("item row produced adjustments: %+v", adjustments)
	}
}
