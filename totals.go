package invoicetext

import (
	"regexp"
	"strings"
)

// The totals extractor is the most failure-prone part of the domain:
// vendors print SUBTOTAL / TAX / TOTAL in five different layouts, and a
// group subtotal misread as the invoice total poisons everything
// downstream. Every layout is a named rule with a single responsibility;
// the ranking across rules is explicit, never first-match-wins.

// Layout rule names, attached to every candidate for auditing.
const (
	LayoutSameLine    = "same-line"
	LayoutSplitLine   = "split-line"
	LayoutStacked     = "stacked-label-column"
	LayoutAlternating = "alternating"
	LayoutHorizontal  = "horizontal-header"
)

// valueWindow is the maximum distance in lines between a label block and
// its values. Money found further away belongs to something else.
const valueWindow = 6

type totalLabelRule struct {
	re       *regexp.Regexp
	label    TotalLabel
	priority int
}

// Checked in this order: the specific total labels by priority, then
// SUBTOTAL and TAX, then the bare TOTAL. Within a line the first matching
// rule wins so that "TOTAL USD" is never classified as a bare "TOTAL".
var totalLabelRules = []totalLabelRule{
	{regexp.MustCompile(`(?i)\bINVOICE\s+TOTAL\b`), LabelInvoiceTotal, 1},
	{regexp.MustCompile(`(?i)\bTOTAL\s+USD\b`), LabelTotalUSD, 1},
	{regexp.MustCompile(`(?i)\bGRAND\s+TOTAL\b`), LabelGrandTotal, 2},
	{regexp.MustCompile(`(?i)\bAMOUNT\s+DUE\b`), LabelAmountDue, 2},
	{regexp.MustCompile(`(?i)\bBALANCE\s+DUE\b`), LabelBalanceDue, 2},
	{regexp.MustCompile(`(?i)\bTOTAL\s+DUE\b`), LabelTotalDue, 3},
	{regexp.MustCompile(`(?i)\bSUB\s*TOTAL\b`), LabelSubtotal, 1},
	{regexp.MustCompile(`(?i)\b(?:SALES\s+)?TAX\b`), LabelTax, 1},
	{regexp.MustCompile(`(?i)\bTOTAL\b`), LabelOther, 4},
}

var (
	reMoneyToken    = regexp.MustCompile(`\$?\(?[\d,]+\.\d{2}\)?`)
	reMoneyOnlyLine = regexp.MustCompile(`^[\s$]*\(?[\d,]+\.\d{2}\)?(?:[\s$]+\(?[\d,]+\.\d{2}\)?)*\s*$`)
	reGroupContext  = regexp.MustCompile(`(?i)\bGROUP\b|\bCATEGORY\b|\bSECTION\b|\bDEPT\b|\*{4}`)
)

// findLabel returns the first label rule matching the line, or nil. A
// bare TOTAL preceded by SUB (with or without a space) is a subtotal, not
// a total.
func findLabel(line string) (*totalLabelRule, []int) {
	for i := range totalLabelRules {
		rule := &totalLabelRules[i]
		loc := rule.re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		if rule.label == LabelOther {
			before := strings.TrimRight(line[:loc[0]], " ")
			if strings.HasSuffix(strings.ToUpper(before), "SUB") {
				return &totalLabelRules[6], loc // SUBTOTAL rule
			}
		}
		return rule, loc
	}
	return nil, nil
}

// findLabels returns every label on a line in order of appearance, used
// by the horizontal-header rule.
func findLabels(line string) []totalLabelRule {
	type hit struct {
		rule totalLabelRule
		pos  int
	}
	var hits []hit
	covered := make([][]int, 0, 4)

	for _, rule := range totalLabelRules {
		for _, loc := range rule.re.FindAllStringIndex(line, -1) {
			overlap := false
			for _, c := range covered {
				if loc[0] < c[1] && loc[1] > c[0] {
					overlap = true
					break
				}
			}
			if overlap {
				continue
			}
			covered = append(covered, loc)
			hits = append(hits, hit{rule: rule, pos: loc[0]})
		}
	}

	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].pos < hits[i].pos {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	out := make([]totalLabelRule, len(hits))
	for i, h := range hits {
		out[i] = h.rule
	}
	return out
}

// moneyOnlyValues returns the money tokens on a line that carries nothing
// but money, or nil.
func moneyOnlyValues(line string) []int64 {
	if !reMoneyOnlyLine.MatchString(line) {
		return nil
	}
	var out []int64
	for _, tok := range reMoneyToken.FindAllString(line, -1) {
		if cents, ok := parseMoney(tok); ok {
			out = append(out, cents)
		}
	}
	return out
}

// contextSnippet grabs the line plus its neighbors for rejection checks
// and debugging.
func contextSnippet(lines []string, i int) string {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi >= len(lines) {
		hi = len(lines) - 1
	}
	return strings.TrimSpace(strings.Join(lines[lo:hi+1], " | "))
}

// ExtractTotals runs every layout rule over the body lines and returns
// all candidates ranked by (priority, score, line). The reconciler picks
// one; nothing here is final.
func ExtractTotals(doc InvoiceText) []TotalCandidate {
	lines := doc.Lines
	var out []TotalCandidate

	consumed := make(map[int]bool) // label lines claimed by multi-line rules

	out = append(out, ruleStackedColumn(lines, consumed)...)
	out = append(out, ruleAlternatingPairs(lines, consumed)...)
	out = append(out, ruleHorizontalHeader(lines, consumed)...)
	out = append(out, ruleSameLine(lines, consumed)...)
	out = append(out, ruleSplitLine(lines, consumed)...)

	out = rejectBadCandidates(lines, out)
	rankCandidates(out)
	return out
}

// ruleSameLine matches label and value on one line: "TOTAL USD 1998.14".
func ruleSameLine(lines []string, consumed map[int]bool) []TotalCandidate {
	var out []TotalCandidate
	for i, line := range lines {
		if consumed[i] {
			continue
		}
		rule, loc := findLabel(line)
		if rule == nil {
			continue
		}
		rest := line[loc[1]:]
		tok := reMoneyToken.FindString(rest)
		if tok == "" {
			continue
		}
		cents, ok := parseMoney(tok)
		if !ok {
			continue
		}
		out = append(out, TotalCandidate{
			Label:      rule.label,
			ValueCents: cents,
			Priority:   rule.priority,
			Context:    contextSnippet(lines, i),
			Score:      90,
			LineIndex:  i,
			Layout:     LayoutSameLine,
		})
	}
	return out
}

// ruleSplitLine matches a label alone on one line with its value on the
// next non-empty line: "TOTAL USD" / "1998.14".
func ruleSplitLine(lines []string, consumed map[int]bool) []TotalCandidate {
	var out []TotalCandidate
	for i, line := range lines {
		if consumed[i] {
			continue
		}
		rule, loc := findLabel(line)
		if rule == nil {
			continue
		}
		if reMoneyToken.MatchString(line[loc[1]:]) {
			continue // same-line rule's territory
		}
		for j := i + 1; j <= i+valueWindow && j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			vals := moneyOnlyValues(lines[j])
			if len(vals) == 1 && !consumed[j] {
				out = append(out, TotalCandidate{
					Label:      rule.label,
					ValueCents: vals[0],
					Priority:   rule.priority,
					Context:    contextSnippet(lines, i),
					Score:      85,
					LineIndex:  i,
					Layout:     LayoutSplitLine,
				})
			}
			break
		}
	}
	return out
}

// ruleStackedColumn matches a run of two or more label-only lines
// followed by the same count of value-only lines, paired in order:
// "SUBTOTAL / SALES TAX / TOTAL USD / 1867.42 / 130.72 / 1998.14".
func ruleStackedColumn(lines []string, consumed map[int]bool) []TotalCandidate {
	var out []TotalCandidate
	for i := 0; i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		var labelRules []*totalLabelRule
		var labelLines []int
		j := i
		for ; j < len(lines); j++ {
			rule, loc := findLabel(lines[j])
			if rule == nil || reMoneyToken.MatchString(lines[j][loc[1]:]) {
				break
			}
			labelRules = append(labelRules, rule)
			labelLines = append(labelLines, j)
		}
		if len(labelRules) < 2 {
			continue
		}

		// Values must start within the window after the label block.
		var values []int64
		var valueLines []int
		k := j
		for ; k < len(lines) && k <= j+valueWindow && len(values) < len(labelRules); k++ {
			if strings.TrimSpace(lines[k]) == "" {
				continue
			}
			vals := moneyOnlyValues(lines[k])
			if len(vals) != 1 {
				break
			}
			values = append(values, vals[0])
			valueLines = append(valueLines, k)
		}
		if len(values) != len(labelRules) {
			continue
		}

		for n, rule := range labelRules {
			out = append(out, TotalCandidate{
				Label:      rule.label,
				ValueCents: values[n],
				Priority:   rule.priority,
				Context:    contextSnippet(lines, labelLines[n]),
				Score:      85,
				LineIndex:  labelLines[n],
				Layout:     LayoutStacked,
			})
			consumed[labelLines[n]] = true
			consumed[valueLines[n]] = true
		}
		i = k - 1
	}
	return out
}

// ruleAlternatingPairs matches two or more consecutive label/value pairs:
// "SUBTOTAL / 1867.42 / SALES TAX / 130.72 / TOTAL USD / 1998.14".
func ruleAlternatingPairs(lines []string, consumed map[int]bool) []TotalCandidate {
	var out []TotalCandidate
	for i := 0; i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		type pair struct {
			rule      *totalLabelRule
			value     int64
			labelLine int
			valueLine int
		}
		var pairs []pair
		j := i
		for j+1 < len(lines) {
			rule, loc := findLabel(lines[j])
			if rule == nil || reMoneyToken.MatchString(lines[j][loc[1]:]) {
				break
			}
			vals := moneyOnlyValues(lines[j+1])
			if len(vals) != 1 {
				break
			}
			pairs = append(pairs, pair{rule: rule, value: vals[0], labelLine: j, valueLine: j + 1})
			j += 2
		}
		if len(pairs) < 2 {
			continue
		}
		for _, p := range pairs {
			out = append(out, TotalCandidate{
				Label:      p.rule.label,
				ValueCents: p.value,
				Priority:   p.rule.priority,
				Context:    contextSnippet(lines, p.labelLine),
				Score:      85,
				LineIndex:  p.labelLine,
				Layout:     LayoutAlternating,
			})
			consumed[p.labelLine] = true
			consumed[p.valueLine] = true
		}
		i = j - 1
	}
	return out
}

// ruleHorizontalHeader matches several labels on one line with their
// values on the next: "SUBTOTAL SALES TAX TOTAL USD" / "1867.42 130.72
// 1998.14".
func ruleHorizontalHeader(lines []string, consumed map[int]bool) []TotalCandidate {
	var out []TotalCandidate
	for i := 0; i+1 < len(lines); i++ {
		if consumed[i] {
			continue
		}
		if reMoneyToken.MatchString(lines[i]) {
			continue
		}
		labels := findLabels(lines[i])
		if len(labels) < 2 {
			continue
		}
		var valueLine int = -1
		for j := i + 1; j <= i+valueWindow && j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			valueLine = j
			break
		}
		if valueLine < 0 {
			continue
		}
		values := moneyOnlyValues(lines[valueLine])
		if len(values) != len(labels) {
			continue
		}
		for n, rule := range labels {
			out = append(out, TotalCandidate{
				Label:      rule.label,
				ValueCents: values[n],
				Priority:   rule.priority,
				Context:    contextSnippet(lines, i),
				Score:      80,
				LineIndex:  i,
				Layout:     LayoutHorizontal,
			})
		}
		consumed[i] = true
		consumed[valueLine] = true
	}
	return out
}

// rejectBadCandidates drops total candidates whose context marks them as
// group, category, section or department subtotals. The check is scoped
// to the label's own line — and, for value-less label lines, the line
// above — so a genuine total printed next to a group block survives.
func rejectBadCandidates(lines []string, in []TotalCandidate) []TotalCandidate {
	out := in[:0]
	for _, c := range in {
		if isTotalLabel(c.Label) && hasGroupContext(lines, c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasGroupContext(lines []string, c TotalCandidate) bool {
	if c.LineIndex < 0 || c.LineIndex >= len(lines) {
		return false
	}
	line := lines[c.LineIndex]
	if reGroupContext.MatchString(line) {
		return true
	}
	if !reMoneyToken.MatchString(line) && c.LineIndex > 0 {
		return reGroupContext.MatchString(lines[c.LineIndex-1])
	}
	return false
}

func isTotalLabel(l TotalLabel) bool {
	switch l {
	case LabelInvoiceTotal, LabelTotalUSD, LabelGrandTotal, LabelAmountDue,
		LabelBalanceDue, LabelTotalDue, LabelOther:
		return true
	}
	return false
}

// rankCandidates orders by priority, then score, then line index.
// Everything downstream depends on this order being deterministic.
func rankCandidates(cands []TotalCandidate) {
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if candidateLess(cands[j], cands[i]) {
				cands[i], cands[j] = cands[j], cands[i]
			}
		}
	}
}

func candidateLess(a, b TotalCandidate) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.LineIndex < b.LineIndex
}

// selectTotals distills the ranked candidates into the subtotal, tax and
// printed total a candidate's Totals block starts from. A bare TOTAL that
// merely repeats the subtotal loses to any higher-priority total with a
// larger value: a subtotal must never be emitted as the total.
func selectTotals(cands []TotalCandidate) (subtotal, tax, printed int64, found bool) {
	for _, c := range cands {
		switch c.Label {
		case LabelSubtotal:
			if subtotal == 0 {
				subtotal = c.ValueCents
			}
		case LabelTax:
			if tax == 0 {
				tax = c.ValueCents
			}
		}
	}

	var best *TotalCandidate
	for i := range cands {
		c := &cands[i]
		if !isTotalLabel(c.Label) {
			continue
		}
		if c.Label == LabelOther && subtotal != 0 && c.ValueCents == subtotal {
			// Bare TOTAL repeating the subtotal: only acceptable when no
			// higher-priority candidate offers a larger figure.
			if better := largerHigherPriority(cands, c.ValueCents); better != nil {
				continue
			}
		}
		if best == nil || candidateLess(*c, *best) {
			best = c
		}
	}
	if best != nil {
		return subtotal, tax, best.ValueCents, true
	}
	return subtotal, tax, 0, false
}

func largerHigherPriority(cands []TotalCandidate, value int64) *TotalCandidate {
	for i := range cands {
		c := &cands[i]
		if isTotalLabel(c.Label) && c.Label != LabelOther && c.Priority < 4 && c.ValueCents > value {
			return c
		}
	}
	return nil
}
