package invoicetext

import (
	"testing"

	"github.com/shopspring/decimal"
)

func tokenOfType(tokens []NumericToken, tt TokenType) *NumericToken {
	for i := range tokens {
		if tokens[i].Type == tt {
			return &tokens[i]
		}
	}
	return nil
}

func TestClassifyLineRoles(t *testing.T) {
	line := "2 CS 1234567 CHICKEN BREAST 40Z          45.67   91.34"
	tokens := ClassifyLine(line, 0)

	qty := tokenOfType(tokens, TokenQuantity)
	if qty == nil || qty.Value != 2 {
		t.Fatalf("quantity not classified: %+v", tokens)
	}
	if qty.Confidence < 50 {
		t.Errorf("left-anchored quantity with unit token scored %d", qty.Confidence)
	}

	sku := tokenOfType(tokens, TokenSKU)
	if sku == nil || sku.Raw != "1234567" {
		t.Fatalf("sku not classified: %+v", tokens)
	}

	price := tokenOfType(tokens, TokenPrice)
	if price == nil {
		t.Fatalf("no price token found: %+v", tokens)
	}
}

func TestClassifyPriceConfidence(t *testing.T) {
	line := "SOMETHING                         $1,998.14"
	tokens := ClassifyLine(line, 0)
	price := tokenOfType(tokens, TokenPrice)
	if price == nil {
		t.Fatal("dollar amount not classified as price")
	}
	if price.Confidence < 80 {
		t.Errorf("right-anchored dollar amount scored only %d", price.Confidence)
	}
}

func TestClassifyPackSize(t *testing.T) {
	tokens := ClassifyLine("TOMATO DICED 6 OZ CANS             12.00", 0)
	if tok := tokenOfType(tokens, TokenPackSize); tok == nil || tok.Value != 6 {
		t.Errorf("pack size not classified: %+v", tokens)
	}
}

func TestValidateItemMathHappyPath(t *testing.T) {
	item := LineItem{
		Quantity:       16,
		UnitPrice:      decimal.RequireFromString("7.500"),
		LineTotalCents: 12000,
	}
	ValidateItemMath(&item)
	if !item.MathValidated || item.MathCorrected {
		t.Errorf("exact math should validate without correction: %+v", item)
	}
}

func TestValidateItemMathThreeDecimalPrecision(t *testing.T) {
	// 3 × 1.333 = 3.999 -> 400 cents after rounding once at the end.
	item := LineItem{
		Quantity:       3,
		UnitPrice:      decimal.RequireFromString("1.333"),
		LineTotalCents: 400,
	}
	ValidateItemMath(&item)
	if !item.MathValidated {
		t.Errorf("three-decimal unit price lost precision: %+v", item)
	}
}

func TestValidateItemMathRepairsMisreadQuantity(t *testing.T) {
	// The quantity column swallowed a SKU. 9198 / 4599 = 2.
	item := LineItem{
		Quantity:       1234567,
		UnitPrice:      decimal.RequireFromString("45.99"),
		LineTotalCents: 9198,
	}
	ValidateItemMath(&item)

	if !item.MathCorrected {
		t.Fatal("misread quantity was not repaired")
	}
	if item.Quantity != 2 {
		t.Errorf("implied quantity = %d, want 2", item.Quantity)
	}
	if item.OriginalQty == nil || *item.OriginalQty != 1234567 {
		t.Errorf("original quantity not preserved: %v", item.OriginalQty)
	}
	if !item.MathValidated {
		t.Error("repaired item must count as validated")
	}
}

func TestValidateItemMathUnfixableKeepsItem(t *testing.T) {
	item := LineItem{
		Quantity:       3,
		UnitPrice:      decimal.RequireFromString("10.00"),
		LineTotalCents: 10550,
	}
	ValidateItemMath(&item)
	if item.MathValidated {
		t.Error("wildly wrong math must not validate")
	}
	if item.MathCorrected {
		t.Error("no plausible repair exists for this item")
	}
}

func TestItemMathTolerance(t *testing.T) {
	tests := []struct {
		total int64
		want  int64
	}{
		{100, 5},    // small totals: 5 cent floor
		{500, 5},    // 1% = 5, floor wins the tie
		{10000, 100}, // 1%
	}
	for _, tc := range tests {
		if got := itemMathTolerance(tc.total); got != tc.want {
			t.Errorf("itemMathTolerance(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}
