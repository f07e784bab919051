package invoicetext

import (
	"regexp"
	"strings"
)

// Normalization runs before everything else and must never fail: the
// worst OCR output still has to come out the other side as a line list
// the rest of the pipeline can index into.

var (
	// OCR splits numbers around their separators: "1998 .14", "1998. 14",
	// "1, 998.14". Joining across plain digit-space-digit is unsafe (it
	// would merge qty and SKU columns), so only separator-adjacent splits
	// are repaired.
	reSplitBeforeDot   = regexp.MustCompile(`(\d)\s+\.(\d)`)
	reSplitAfterDot    = regexp.MustCompile(`(\d)\.\s+(\d{2})\b`)
	reSplitBeforeComma = regexp.MustCompile(`(\d)\s+,(\d{3})\b`)
	reSplitAfterComma  = regexp.MustCompile(`(\d),\s+(\d{3})\b`)

	reMultiSpace = regexp.MustCompile(` {2,}`)
)

// mapRune rewrites Unicode whitespace and dash variants to their ASCII
// equivalents. Zero-width space is dropped entirely; carriage returns
// disappear so only \n remains as the line separator.
func mapRune(r rune) rune {
	switch r {
	case '\u00A0', '\u2000', '\u2001', '\u2002', '\u2003', '\u2004',
		'\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A',
		'\u202F', '\u205F', '\u3000', '\t':
		return ' '
	case '\u200B', '\r':
		return -1
	case '\u2010', '\u2011', '\u2012', '\u2013', '\u2014', '\u2212':
		return '-'
	}
	return r
}

// Normalize converts raw extracted text into an InvoiceText: Unicode
// whitespace and dash repair, numeric de-fracturing, page-break handling
// and removal of per-page repeated headers and footers. Pure function;
// empty input yields an empty InvoiceText.
func Normalize(raw string) InvoiceText {
	if raw == "" {
		return InvoiceText{}
	}

	text := strings.Map(mapRune, raw)
	text = reSplitBeforeDot.ReplaceAllString(text, "$1.$2")
	text = reSplitAfterDot.ReplaceAllString(text, "$1.$2")
	text = reSplitBeforeComma.ReplaceAllString(text, "$1,$2")
	text = reSplitAfterComma.ReplaceAllString(text, "$1,$2")

	pages := strings.Split(text, "\f")
	pageLines := make([][]string, len(pages))
	for i, p := range pages {
		lines := strings.Split(p, "\n")
		for j, ln := range lines {
			lines[j] = normalizeLine(ln)
		}
		pageLines[i] = lines
	}

	if len(pageLines) >= 3 {
		stripRepeatedEdges(pageLines)
	}

	var body []string
	var breaks []int
	for i, lines := range pageLines {
		if i > 0 {
			breaks = append(breaks, len(body))
			body = append(body, "")
		}
		body = append(body, lines...)
	}

	return InvoiceText{
		Raw:        raw,
		Normalized: strings.Join(body, "\n"),
		Lines:      body,
		PageBreaks: breaks,
	}
}

// normalizeLine trims trailing whitespace and collapses space runs on
// prose lines. Lines with two or more numeric tokens keep their internal
// whitespace: the column detector needs it.
func normalizeLine(line string) string {
	line = strings.TrimRight(line, " ")
	if countNumericTokens(line) >= 2 {
		return line
	}
	return reMultiSpace.ReplaceAllString(line, " ")
}

func countNumericTokens(line string) int {
	n := 0
	inRun := false
	for _, r := range line {
		if r >= '0' && r <= '9' {
			if !inRun {
				n++
				inRun = true
			}
		} else if r != '.' && r != ',' {
			inRun = false
		}
	}
	return n
}

// stripRepeatedEdges blanks lines that repeat verbatim on three or more
// pages within the first and last five lines of each page. Blanking
// instead of deleting keeps body line indexes stable.
func stripRepeatedEdges(pageLines [][]string) {
	const edge = 5

	counts := make(map[string]int)
	for _, lines := range pageLines {
		seen := make(map[string]bool)
		for _, ln := range edgeLines(lines, edge) {
			key := strings.TrimSpace(ln)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
		}
	}

	for _, lines := range pageLines {
		for i := range lines {
			if !isEdgeIndex(i, len(lines), edge) {
				continue
			}
			key := strings.TrimSpace(lines[i])
			if key != "" && counts[key] >= 3 {
				lines[i] = ""
			}
		}
	}
}

func edgeLines(lines []string, edge int) []string {
	var out []string
	for i, ln := range lines {
		if isEdgeIndex(i, len(lines), edge) {
			out = append(out, ln)
		}
	}
	return out
}

func isEdgeIndex(i, total, edge int) bool {
	return i < edge || i >= total-edge
}
