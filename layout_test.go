package invoicetext

import (
	"strings"
	"testing"
)

func TestDetectTableLayout(t *testing.T) {
	lines := strings.Split(strings.Join([]string{
		"ACME RESTAURANT SUPPLY",
		"INVOICE NO: 1002",
		"",
		"QTY   ITEM     DESCRIPTION              UNIT PRICE   AMOUNT",
		"2     10450    PAPER TOWEL ROLL         12.50        25.00",
		"5     10923    DEGREASER GALLON          8.00        40.00",
		"1     11765    MOP HEAD COTTON           9.99         9.99",
	}, "\n"), "\n")

	layout := DetectTableLayout(lines)
	if layout.HeaderLine != 3 {
		t.Fatalf("header line = %d, want 3", layout.HeaderLine)
	}
	if len(layout.Columns) < 3 {
		t.Errorf("detected %d columns, want at least 3: %v", len(layout.Columns), layout.Columns)
	}
}

func TestDetectTableLayoutAbsent(t *testing.T) {
	lines := []string{"Dear customer,", "thanks for your order.", "TOTAL 12.00"}
	layout := DetectTableLayout(lines)
	if layout.HeaderLine != -1 {
		t.Errorf("prose text must not produce a header line, got %d", layout.HeaderLine)
	}
}

func TestExtractRightAnchoredPrices(t *testing.T) {
	anchored := extractRightAnchoredPrices("16 2175 MAT 4X6 BLACK  7.500  120.00")
	if anchored.Count != 2 {
		t.Fatalf("count = %d, want 2", anchored.Count)
	}
	if got := toCents(anchored.LineTotal); got != 12000 {
		t.Errorf("line total = %d cents, want 12000", got)
	}
	if got := anchored.UnitPrice.String(); got != "7.5" {
		t.Errorf("unit price = %s, want 7.5", got)
	}
	if !strings.Contains(anchored.Rest, "MAT 4X6 BLACK") {
		t.Errorf("rest lost the description: %q", anchored.Rest)
	}
}

func TestExtractRightAnchoredSinglePrice(t *testing.T) {
	anchored := extractRightAnchoredPrices("DELIVERY FEE              15.00")
	if anchored.Count != 1 {
		t.Fatalf("count = %d, want 1", anchored.Count)
	}
	if got := toCents(anchored.LineTotal); got != 1500 {
		t.Errorf("line total = %d cents, want 1500", got)
	}
}

func TestExtractLeftQuantity(t *testing.T) {
	tests := []struct {
		line     string
		wantVal  int64
		wantUnit string
		wantCat  string
		ok       bool
	}{
		{"16 2175 MAT 4X6 BLACK", 16, "", "", true},
		{"C 16 2175 MAT", 16, "", "C", true},
		{"5 CS CHICKEN BREAST", 5, "CS", "", true},
		{"PAPER TOWEL 25.00", 0, "", "", false},
	}
	for _, tc := range tests {
		lq, ok := extractLeftQuantity(tc.line)
		if ok != tc.ok {
			t.Errorf("extractLeftQuantity(%q) ok = %t, want %t", tc.line, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if lq.Value != tc.wantVal || lq.Unit != tc.wantUnit || lq.Category != tc.wantCat {
			t.Errorf("extractLeftQuantity(%q) = %+v", tc.line, lq)
		}
	}
}
