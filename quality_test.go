package invoicetext

import (
	"strings"
	"testing"
)

func TestScoreLineBuckets(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		garbage bool
	}{
		{"price row", "16 2175 MAT 4X6 BLACK  7.500  120.00", false},
		{"totals label", "SUBTOTAL 1867.42", false},
		{"ocr noise", "~~%#@!^&*", true},
		{"single char", "x", true},
		{"plain prose", "Thank you for your business", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score := scoreLine(tc.line)
			if tc.garbage && score >= garbageThreshold {
				t.Errorf("scoreLine(%q) = %d, want < %d", tc.line, score, garbageThreshold)
			}
			if !tc.garbage && score < garbageThreshold {
				t.Errorf("scoreLine(%q) = %d, want >= %d", tc.line, score, garbageThreshold)
			}
		})
	}
}

func TestAnalyzeQualityBuckets(t *testing.T) {
	good := Normalize("INVOICE NO: 4711\n2 WIDGET ALPHA  250.00  500.00\nTOTAL USD 500.00")
	if got := AnalyzeQuality(good).Bucket; got != QualityGood {
		t.Errorf("clean invoice text scored %v, want good", got)
	}
}

func TestAggressiveCleanSubstitutions(t *testing.T) {
	doc := Normalize("ITEM 47l1O23 OIL BLEND")
	report := AnalyzeQuality(doc)
	cleaned := AggressiveClean(doc, report)

	if !strings.Contains(cleaned.Normalized, "4711023") {
		t.Errorf("digit cluster not repaired: %q", cleaned.Normalized)
	}
	// Alphabetic words must never be touched.
	if !strings.Contains(cleaned.Normalized, "OIL") {
		t.Errorf("alphabetic word was mangled: %q", cleaned.Normalized)
	}
}

func TestAggressiveCleanDropsGarbage(t *testing.T) {
	doc := Normalize("2 WIDGET ALPHA  250.00  500.00\n~~%#@!^&*\nTOTAL USD 500.00")
	report := AnalyzeQuality(doc)
	cleaned := AggressiveClean(doc, report)

	if len(cleaned.Lines) != len(doc.Lines) {
		t.Fatalf("cleaning must preserve line count: %d != %d", len(cleaned.Lines), len(doc.Lines))
	}
	if strings.TrimSpace(cleaned.Lines[1]) != "" {
		t.Errorf("garbage line survived cleaning: %q", cleaned.Lines[1])
	}
}

func TestMergeSplitLines(t *testing.T) {
	doc := Normalize(strings.Join([]string{
		"2 1234567 PREMIUM OLIVE",
		"OIL BLEND IMPORTED  88.20  176.40",
		"1 2345678 SALT COARSE  4.50  4.50",
	}, "\n"))

	merged := MergeSplitLines(doc)
	if len(merged) != 2 {
		t.Fatalf("want 2 merged lines, got %d: %+v", len(merged), merged)
	}
	if !strings.Contains(merged[0].Text, "PREMIUM OLIVE OIL BLEND IMPORTED") {
		t.Errorf("split item was not merged: %q", merged[0].Text)
	}
	if !strings.HasSuffix(merged[0].Text, "176.40") {
		t.Errorf("continuation prices were lost: %q", merged[0].Text)
	}
	if merged[0].Source != 0 {
		t.Errorf("merged line should point at its first source line, got %d", merged[0].Source)
	}
}
