package invoicetext

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// The layout detector works out where the item table is and where its
// columns sit. Several strategies also borrow its two anchor extractors:
// prices pulled from the right edge, quantities from the left.

var (
	headerColumnWords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bQTY\b|\bQUANTITY\b`),
		regexp.MustCompile(`(?i)\bSKU\b|\bITEM\s*(NO|#|NUMBER)?\b|\bCODE\b`),
		regexp.MustCompile(`(?i)\bDESCRIPTION\b|\bPRODUCT\b`),
		regexp.MustCompile(`(?i)\bPACK\b|\bSIZE\b`),
		regexp.MustCompile(`(?i)\bUNIT\s*PRICE\b|\bPRICE\b|\bRATE\b`),
		regexp.MustCompile(`(?i)\bTOTAL\b|\bAMOUNT\b|\bEXTENDED\b|\bEXT\b`),
	}

	reRightPrice = regexp.MustCompile(`\$?[\d,]+\.\d{2,3}\s*$`)
	reLeftQty    = regexp.MustCompile(`^([CFPD])?\s*(\d{1,3})\s*([A-Z]{1,4})?\b`)
)

// TableLayout describes a detected item table.
type TableLayout struct {
	HeaderLine int   // index into the body lines, -1 when absent
	Columns    []int // start offsets of detected columns
}

// DetectTableLayout scans the first thirty body lines for a header row
// carrying at least three known column words, then estimates column
// boundaries from the whitespace profile of the lines that follow.
func DetectTableLayout(lines []string) TableLayout {
	layout := TableLayout{HeaderLine: -1}

	limit := len(lines)
	if limit > 30 {
		limit = 30
	}
	for i := 0; i < limit; i++ {
		if countHeaderWords(lines[i]) >= 3 {
			layout.HeaderLine = i
			break
		}
	}
	if layout.HeaderLine < 0 {
		return layout
	}

	sample := lines[layout.HeaderLine+1:]
	if len(sample) > 40 {
		sample = sample[:40]
	}
	layout.Columns = columnBoundaries(sample)
	return layout
}

func countHeaderWords(line string) int {
	n := 0
	for _, re := range headerColumnWords {
		if re.MatchString(line) {
			n++
		}
	}
	return n
}

// columnBoundaries finds offsets where at least 60% of the sampled
// non-empty lines carry whitespace, then keeps the left edge of each gap
// run as a column start.
func columnBoundaries(sample []string) []int {
	width := 0
	var rows []string
	for _, ln := range sample {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		rows = append(rows, ln)
		if len(ln) > width {
			width = len(ln)
		}
	}
	if len(rows) < 2 || width == 0 {
		return nil
	}

	gap := make([]bool, width)
	for col := 0; col < width; col++ {
		blanks := 0
		for _, row := range rows {
			if col >= len(row) || row[col] == ' ' {
				blanks++
			}
		}
		gap[col] = float64(blanks)/float64(len(rows)) >= 0.6
	}

	var cols []int
	inGap := true // column 0 starts the first field
	for col := 0; col < width; col++ {
		if !gap[col] && inGap {
			cols = append(cols, col)
			inGap = false
		} else if gap[col] {
			inGap = true
		}
	}
	return cols
}

// sliceColumns splits a line at the layout's column starts.
func (tl TableLayout) sliceColumns(line string) []string {
	if len(tl.Columns) == 0 {
		return nil
	}
	parts := make([]string, 0, len(tl.Columns))
	for i, start := range tl.Columns {
		if start >= len(line) {
			parts = append(parts, "")
			continue
		}
		end := len(line)
		if i+1 < len(tl.Columns) && tl.Columns[i+1] < end {
			end = tl.Columns[i+1]
		}
		parts = append(parts, strings.TrimSpace(line[start:end]))
	}
	return parts
}

// rightAnchored holds up to three prices pulled from the right edge of a
// line. The rightmost is the line total, the one before it the unit
// price.
type rightAnchored struct {
	LineTotal decimal.Decimal
	UnitPrice decimal.Decimal
	Extra     decimal.Decimal
	Count     int
	Rest      string // line content left of the extracted prices
}

// extractRightAnchoredPrices pulls up to three successive price tokens
// from the right end of the line.
func extractRightAnchoredPrices(line string) rightAnchored {
	out := rightAnchored{Rest: strings.TrimRight(line, " ")}
	prices := make([]decimal.Decimal, 0, 3)

	for len(prices) < 3 {
		m := reRightPrice.FindStringIndex(out.Rest)
		if m == nil {
			break
		}
		d, ok := parseMoneyDecimal(strings.TrimSpace(out.Rest[m[0]:m[1]]))
		if !ok {
			break
		}
		prices = append(prices, d)
		out.Rest = strings.TrimRight(out.Rest[:m[0]], " ")
	}

	out.Count = len(prices)
	// prices[0] is the rightmost token.
	if out.Count >= 1 {
		out.LineTotal = prices[0]
	}
	if out.Count >= 2 {
		out.UnitPrice = prices[1]
	}
	if out.Count >= 3 {
		out.Extra = prices[2]
	}
	return out
}

// leftQuantity is a quantity anchored at the start of a line, with the
// optional category letter and unit suffix that vendors print around it.
type leftQuantity struct {
	Value    int64
	Unit     string
	Category string
	Rest     string // line content after the quantity block
}

// extractLeftQuantity matches an optional category letter, a 1-3 digit
// quantity and an optional short unit at the start of the line. Values
// outside [1, 999] are rejected.
func extractLeftQuantity(line string) (leftQuantity, bool) {
	trimmed := strings.TrimLeft(line, " ")
	m := reLeftQty.FindStringSubmatch(trimmed)
	if m == nil {
		return leftQuantity{}, false
	}
	val := int64(0)
	for _, r := range m[2] {
		val = val*10 + int64(r-'0')
	}
	if val < 1 || val > 999 {
		return leftQuantity{}, false
	}
	loc := reLeftQty.FindStringIndex(trimmed)
	return leftQuantity{
		Value:    val,
		Unit:     m[3],
		Category: m[1],
		Rest:     strings.TrimLeft(trimmed[loc[1]:], " "),
	}, true
}
