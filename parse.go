package invoicetext

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParserVersion identifies the engine build in every result.
const ParserVersion = "2.4.0"

// Error identifiers in the result envelope.
const (
	ErrEmptyInput   = "empty_input"
	ErrNoValidParse = "no_valid_parse"
)

// Parse runs the full pipeline over raw invoice text: normalize, assess
// quality, detect the vendor, run the competing strategies, score and
// choose, filter garbage and reconcile against the printed total.
//
// Parse never panics and never returns an error across the boundary;
// failures are reported in the result envelope. The call is re-entrant:
// all package state is read-only after initialization, so Parse may run
// concurrently from any number of goroutines.
func Parse(raw string, opts Options) *ParseResult {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if strings.TrimSpace(raw) == "" {
		return &ParseResult{
			Success:       false,
			Error:         ErrEmptyInput,
			Vendor:        VendorIdentity{Key: VendorUnknown, DisplayName: "Unknown"},
			ParserVersion: ParserVersion,
			Totals:        Totals{Currency: "USD"},
			LineItems:     []LineItem{},
			Adjustments:   []Adjustment{},
			Confidence:    ValidationReport{Issues: []string{}, Warnings: []string{}},
		}
	}

	doc := Normalize(raw)

	quality := AnalyzeQuality(doc)
	if quality.Bucket == QualityPoor && opts.AggressiveClean {
		log.Debug("applying aggressive clean", zap.Int("score", quality.Score))
		doc = AggressiveClean(doc, quality)
	}

	vendor, vendorScores := resolveVendor(doc, opts, log)

	ctx := &strategyContext{
		doc:     doc,
		merged:  MergeSplitLines(doc),
		layout:  DetectTableLayout(doc.Lines),
		totals:  ExtractTotals(doc),
		adjusts: ExtractAdjustments(doc),
		vendor:  vendor,
	}
	ctx.header = ExtractHeader(doc, ctx.layout)

	candidates := runStrategies(ctx, opts, log)

	for _, c := range candidates {
		validateCandidate(c)
	}

	winner := chooseCandidate(candidates)
	if winner == nil {
		log.Debug("no usable candidate", zap.Int("candidates", len(candidates)))
		res := &ParseResult{
			Success:       false,
			Error:         ErrNoValidParse,
			Vendor:        vendor,
			ParserVersion: ParserVersion,
			Header:        ctx.header,
			Totals:        Totals{Currency: "USD"},
			LineItems:     []LineItem{},
			Adjustments:   []Adjustment{},
			Confidence:    ValidationReport{Issues: []string{}, Warnings: []string{}},
		}
		attachDebug(res, raw, doc, quality, vendorScores, candidates, ctx, nil, opts)
		recordPattern(opts.Store, doc, res)
		return res
	}

	// Final garbage pass runs before the books are closed so that the
	// authoritative total reflects the surviving items.
	filtered, fired := FilterGarbage(winner.Items, winner.Totals)
	winner.Items = filtered
	for _, f := range fired {
		log.Debug("garbage filter", zap.String("dropped", f))
	}

	trace := Reconcile(winner, ctx.totals)
	finalizeNumbers(winner)

	res := &ParseResult{
		Success:       true,
		Vendor:        winner.Vendor,
		ParserVersion: ParserVersion,
		Header:        winner.Header,
		Totals:        winner.Totals,
		LineItems:     winner.Items,
		Adjustments:   winner.Adjustments,
		Confidence:    winner.Report,
	}
	attachDebug(res, raw, doc, quality, vendorScores, candidates, ctx, trace, opts)
	recordPattern(opts.Store, doc, res)

	log.Debug("parse complete",
		zap.String("vendor", res.Vendor.Key.String()),
		zap.String("strategy", winner.Strategy),
		zap.Int("items", len(res.LineItems)),
		zap.Int64("total", res.Totals.TotalCents),
		zap.Int("score", res.Confidence.Score))
	return res
}

// resolveVendor applies the hint when present, else runs detection.
func resolveVendor(doc InvoiceText, opts Options, log *zap.Logger) (VendorIdentity, []VendorScore) {
	if opts.VendorHint != "" {
		key, err := VendorKeyFromString(opts.VendorHint)
		if err == nil && key != VendorUnknown && key != VendorGeneric {
			if sig := signatureFor(key); sig != nil {
				return VendorIdentity{Key: key, DisplayName: sig.DisplayName, Confidence: 100}, nil
			}
		}
		log.Debug("ignoring unusable vendor hint", zap.String("hint", opts.VendorHint))
	}
	return DetectVendor(doc)
}

// runStrategies produces the candidate set. The detected (or advised)
// vendor's parser runs first; the generic strategies follow unless strict
// mode suppresses them. A panicking strategy contributes no candidate.
func runStrategies(ctx *strategyContext, opts Options, log *zap.Logger) []*ParseCandidate {
	vendorKey := ctx.vendor.Key

	// The pattern store may advise a different vendor parser first, but
	// only when detection came up generic.
	if opts.Store != nil && vendorKey == VendorGeneric {
		if fp, _ := Fingerprint(ctx.doc); fp != "" {
			if hit, ok := opts.Store.Recommend(fp); ok {
				if advised, err := VendorKeyFromString(hit.Vendor); err == nil && advised != VendorGeneric && advised != VendorUnknown {
					log.Debug("pattern store advises vendor", zap.String("vendor", hit.Vendor))
					vendorKey = advised
				}
			}
		}
	}

	type namedStrategy struct {
		name string
		run  func(*strategyContext) *ParseCandidate
	}
	var plan []namedStrategy

	switch vendorKey {
	case VendorCintas:
		plan = append(plan, namedStrategy{StrategyCintas, parseCintas})
	case VendorSysco:
		plan = append(plan, namedStrategy{StrategySysco, parseSysco})
	case VendorUSFoods:
		plan = append(plan, namedStrategy{StrategyUSFoods, parseUSFoods})
	}

	if !opts.Strict {
		plan = append(plan,
			namedStrategy{StrategyHeaderGuided, parseHeaderGuided},
			namedStrategy{StrategyPriceAnchored, parsePriceAnchored},
			namedStrategy{StrategyUniversal, parseUniversal},
			namedStrategy{StrategyDelimiter, parseDelimiter},
			namedStrategy{StrategyHeuristic, parseHeuristic},
		)
	}

	var out []*ParseCandidate
	for i, s := range plan {
		c := runStrategySafe(s.name, s.run, ctx, log)
		if c == nil {
			continue
		}
		c.order = i
		out = append(out, c)
	}
	return out
}

// runStrategySafe isolates a strategy: an internal panic is logged and
// the strategy simply contributes no candidate.
func runStrategySafe(name string, run func(*strategyContext) *ParseCandidate, ctx *strategyContext, log *zap.Logger) (c *ParseCandidate) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("strategy failed", zap.String("strategy", name), zap.Any("panic", r))
			c = nil
		}
	}()
	return run(ctx)
}

func attachDebug(res *ParseResult, raw string, doc InvoiceText, quality QualityReport,
	vendorScores []VendorScore, candidates []*ParseCandidate, ctx *strategyContext,
	trace []string, opts Options) {
	if !opts.Debug {
		return
	}
	dbg := &DebugInfo{
		ParseID:        parseID(raw, opts),
		OriginalText:   raw,
		VendorScores:   vendorScores,
		Reconciliation: trace,
		Quality:        quality.Bucket.String(),
	}
	for _, c := range candidates {
		dbg.CandidateScores = append(dbg.CandidateScores, CandidateScore{
			Strategy:       c.Strategy,
			VendorSpecific: c.VendorSpecific,
			ItemCount:      len(c.Items),
			Score:          c.Score,
		})
	}
	if ctx != nil {
		for _, tc := range ctx.totals {
			dbg.TotalCandidates = append(dbg.TotalCandidates, TotalEvidence{
				Label:      tc.Label.String(),
				ValueCents: tc.ValueCents,
				Priority:   tc.Priority,
				Layout:     tc.Layout,
				Context:    tc.Context,
			})
		}
	}
	res.Debug = dbg
}

// parseID is a name-based UUID over the input text and the options that
// affect the result. Identical input and options always get the same id,
// so repeated parses stay byte-identical.
func parseID(raw string, opts Options) string {
	seed := fmt.Sprintf("%s|%s|%t|%t", raw, opts.VendorHint, opts.Strict, opts.AggressiveClean)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

func recordPattern(store *PatternStore, doc InvoiceText, res *ParseResult) {
	if store == nil {
		return
	}
	fp, features := Fingerprint(doc)
	store.Record(fp, features, res)
}
