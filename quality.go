package invoicetext

import (
	"regexp"
	"strings"
)

// The quality analyzer decides how much the pipeline can trust each line
// and whether the aggressive cleanup pass is worth the risk. Scores are
// 0..100; a line below garbageThreshold is treated as noise.

const garbageThreshold = 30

var (
	rePriceLike      = regexp.MustCompile(`\$?[\d,]+\.\d{2}\b`)
	reWordToken      = regexp.MustCompile(`[A-Za-z]{2,}`)
	reDigitCluster   = regexp.MustCompile(`[0-9OlI]{3,}`)
	reInvoiceKeyword = regexp.MustCompile(`(?i)\b(INVOICE|SUBTOTAL|TOTAL|TAX|QTY|ITEM|DESCRIPTION|AMOUNT|ACCOUNT|CUSTOMER|DATE|DUE)\b`)
)

// QualityReport is the analyzer's verdict on a normalized document.
type QualityReport struct {
	LineScores []int
	Score      int
	Bucket     QualityBucket
}

// AnalyzeQuality scores every line and the whole document. The document
// score is the mean over non-garbage lines; empty lines are skipped.
func AnalyzeQuality(doc InvoiceText) QualityReport {
	report := QualityReport{LineScores: make([]int, len(doc.Lines))}

	sum, counted := 0, 0
	for i, line := range doc.Lines {
		score := scoreLine(line)
		report.LineScores[i] = score
		if strings.TrimSpace(line) == "" {
			continue
		}
		if score >= garbageThreshold {
			sum += score
			counted++
		}
	}
	if counted > 0 {
		report.Score = sum / counted
	}

	switch {
	case report.Score >= 70:
		report.Bucket = QualityGood
	case report.Score >= 45:
		report.Bucket = QualityFair
	default:
		report.Bucket = QualityPoor
	}
	return report
}

// scoreLine combines length bounds, character-class ratios, price-like
// patterns, invoice keywords and word count into a 0..100 score.
func scoreLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0
	}

	score := 50

	// Length bounds. Very short fragments and very long smears are both
	// typical OCR artifacts.
	n := len(trimmed)
	switch {
	case n < 3:
		score -= 30
	case n > 200:
		score -= 20
	case n >= 10 && n <= 120:
		score += 10
	}

	var alnum, special int
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			alnum++
		case r == '.' || r == ',' || r == '$' || r == '-' || r == '#' || r == '/' || r == ':' || r == '%' || r == '&' || r == '(' || r == ')':
			// punctuation that legitimately appears on invoices
		default:
			special++
		}
	}
	total := len([]rune(trimmed))
	if total > 0 {
		if float64(special)/float64(total) > 0.3 {
			score -= 30
		}
		if float64(alnum)/float64(total) > 0.8 {
			score += 10
		}
	}

	if rePriceLike.MatchString(trimmed) {
		score += 15
	}
	if reInvoiceKeyword.MatchString(trimmed) {
		score += 10
	}

	words := len(reWordToken.FindAllString(trimmed, -1))
	switch {
	case words == 0 && !rePriceLike.MatchString(trimmed):
		score -= 15
	case words >= 2 && words <= 12:
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// AggressiveClean drops garbage lines (replacing them with blanks so
// indexes stay stable) and applies conservative OCR substitutions inside
// digit clusters: O->0 and l/I->1, never inside alphabetic words.
func AggressiveClean(doc InvoiceText, report QualityReport) InvoiceText {
	lines := make([]string, len(doc.Lines))
	for i, line := range doc.Lines {
		if i < len(report.LineScores) && report.LineScores[i] < garbageThreshold {
			lines[i] = ""
			continue
		}
		lines[i] = repairDigitClusters(line)
	}
	return InvoiceText{
		Raw:        doc.Raw,
		Normalized: strings.Join(lines, "\n"),
		Lines:      lines,
		PageBreaks: doc.PageBreaks,
	}
}

// repairDigitClusters substitutes O->0 and l/I->1 within runs that are
// mostly digits. A cluster qualifies when letters are the minority, so
// product codes like "OIL" stay untouched.
func repairDigitClusters(line string) string {
	return reDigitCluster.ReplaceAllStringFunc(line, func(cluster string) string {
		digits, letters := 0, 0
		for _, r := range cluster {
			if r >= '0' && r <= '9' {
				digits++
			} else {
				letters++
			}
		}
		if digits <= letters {
			return cluster
		}
		repl := strings.NewReplacer("O", "0", "l", "1", "I", "1")
		return repl.Replace(cluster)
	})
}

// mergedLine is a body line after multi-line merging, with a pointer back
// to its first source line.
type mergedLine struct {
	Text   string
	Source int
}

var (
	reStartsItem  = regexp.MustCompile(`^\s*[CFPD]?\s*\d`)
	reEndsWithPrice = regexp.MustCompile(`\$?[\d,]+\.\d{2,3}\s*$`)
)

// MergeSplitLines joins consecutive lines that OCR broke apart: a line
// that does not start with a number or category code continues the
// previous buffered line, as long as that line has not yet ended with a
// price. A price at the end of a line completes the row and flushes the
// buffer.
func MergeSplitLines(doc InvoiceText) []mergedLine {
	var out []mergedLine
	var buf strings.Builder
	bufSource := -1
	bufClosed := true

	flush := func() {
		if buf.Len() > 0 {
			out = append(out, mergedLine{Text: buf.String(), Source: bufSource})
			buf.Reset()
			bufSource = -1
		}
	}

	for i, line := range doc.Lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			bufClosed = true
			continue
		}

		startsItem := reStartsItem.MatchString(trimmed)
		endsPrice := reEndsWithPrice.MatchString(trimmed)

		if buf.Len() > 0 && !bufClosed && !startsItem {
			buf.WriteString(" ")
			buf.WriteString(trimmed)
		} else {
			flush()
			buf.WriteString(trimmed)
			bufSource = i
		}

		bufClosed = endsPrice
		if endsPrice {
			flush()
		}
	}
	flush()
	return out
}
