package invoicetext

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type (
	// VendorKey identifies a known vendor layout.
	VendorKey int
	// TokenType classifies a numeric literal found in a line.
	TokenType int
	// AdjustmentKind distinguishes fees, credits, taxes and synthetic
	// reconciliation entries.
	AdjustmentKind int
	// TotalLabel is the label class of a monetary total candidate.
	TotalLabel int
	// QualityBucket is the whole-document text quality classification.
	QualityBucket int
)

// Known vendor layouts. VendorGeneric is used when no fingerprint reaches
// the detection threshold.
const (
	VendorUnknown VendorKey = iota
	VendorGeneric
	VendorCintas
	VendorSysco
	VendorUSFoods
)

func (vk VendorKey) String() string {
	switch vk {
	case VendorGeneric:
		return "generic"
	case VendorCintas:
		return "cintas"
	case VendorSysco:
		return "sysco"
	case VendorUSFoods:
		return "usfoods"
	}
	return "unknown"
}

// VendorKeyFromString maps a machine identifier back to its VendorKey.
// Unknown identifiers are rejected so that bad vendor hints surface at the
// boundary instead of silently selecting the generic parser.
func VendorKeyFromString(s string) (VendorKey, error) {
	switch s {
	case "generic":
		return VendorGeneric, nil
	case "cintas":
		return VendorCintas, nil
	case "sysco":
		return VendorSysco, nil
	case "usfoods":
		return VendorUSFoods, nil
	case "unknown":
		return VendorUnknown, nil
	}
	return VendorUnknown, fmt.Errorf("unknown vendor key %q", s)
}

// MarshalJSON writes the vendor key as its machine identifier.
func (vk VendorKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(vk.String())
}

// UnmarshalJSON rejects unknown vendor identifiers.
func (vk *VendorKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	key, err := VendorKeyFromString(s)
	if err != nil {
		return err
	}
	*vk = key
	return nil
}

// Numeric token classes.
const (
	TokenUnknown TokenType = iota
	TokenPrice
	TokenSKU
	TokenQuantity
	TokenPackSize
)

func (tt TokenType) String() string {
	switch tt {
	case TokenPrice:
		return "price"
	case TokenSKU:
		return "sku"
	case TokenQuantity:
		return "quantity"
	case TokenPackSize:
		return "pack-size"
	}
	return "unknown"
}

// MarshalJSON writes the token type as its string form.
func (tt TokenType) MarshalJSON() ([]byte, error) {
	return json.Marshal(tt.String())
}

// Adjustment kinds. Credits carry negative amounts; synthetic adjustments
// are introduced only by the reconciler.
const (
	AdjustmentFee AdjustmentKind = iota
	AdjustmentCredit
	AdjustmentTax
	AdjustmentSynthetic
)

func (ak AdjustmentKind) String() string {
	switch ak {
	case AdjustmentFee:
		return "fee"
	case AdjustmentCredit:
		return "credit"
	case AdjustmentTax:
		return "tax"
	case AdjustmentSynthetic:
		return "synthetic"
	}
	return "unknown"
}

// MarshalJSON writes the adjustment kind as its string form.
func (ak AdjustmentKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(ak.String())
}

// UnmarshalJSON rejects unknown adjustment kinds.
func (ak *AdjustmentKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "fee":
		*ak = AdjustmentFee
	case "credit":
		*ak = AdjustmentCredit
	case "tax":
		*ak = AdjustmentTax
	case "synthetic":
		*ak = AdjustmentSynthetic
	default:
		return fmt.Errorf("unknown adjustment kind %q", s)
	}
	return nil
}

// Total candidate label classes.
const (
	LabelOther TotalLabel = iota
	LabelInvoiceTotal
	LabelTotalUSD
	LabelGrandTotal
	LabelAmountDue
	LabelBalanceDue
	LabelTotalDue
	LabelSubtotal
	LabelGroupTotal
	LabelTax
)

func (tl TotalLabel) String() string {
	switch tl {
	case LabelInvoiceTotal:
		return "INVOICE_TOTAL"
	case LabelTotalUSD:
		return "TOTAL_USD"
	case LabelGrandTotal:
		return "GRAND_TOTAL"
	case LabelAmountDue:
		return "AMOUNT_DUE"
	case LabelBalanceDue:
		return "BALANCE_DUE"
	case LabelTotalDue:
		return "TOTAL_DUE"
	case LabelSubtotal:
		return "SUBTOTAL"
	case LabelGroupTotal:
		return "GROUP_TOTAL"
	case LabelTax:
		return "TAX"
	}
	return "OTHER"
}

// Document quality buckets.
const (
	QualityPoor QualityBucket = iota
	QualityFair
	QualityGood
)

func (qb QualityBucket) String() string {
	switch qb {
	case QualityPoor:
		return "poor"
	case QualityFair:
		return "fair"
	case QualityGood:
		return "good"
	}
	return "unknown"
}

// InvoiceText is the normalized form of a raw invoice document. It is
// created once at pipeline entry and never mutated afterwards; downstream
// stages refer to body lines by index into Lines.
type InvoiceText struct {
	Raw        string
	Normalized string
	Lines      []string
	PageBreaks []int
}

// VendorIdentity is the result of vendor detection.
type VendorIdentity struct {
	Key         VendorKey `json:"vendorKey"`
	DisplayName string    `json:"vendorName"`
	Confidence  int       `json:"confidence"`
}

// NumericToken is one numeric literal found in a line, classified with a
// confidence score and its positional context. Short-lived; scoped to the
// classifier and the strategies that consume it.
type NumericToken struct {
	Value            float64
	Raw              string
	LineIndex        int
	StartCol         int
	EndCol           int
	RelativePosition float64 // 0 at start of line, 1 at end
	Type             TokenType
	Confidence       int
	Reasons          []string
}

// LineItem is a single billable product or service row.
//
// UnitPrice carries full internal precision (some vendors print
// three-decimal unit prices); UnitPriceCents is the rounded display
// value. OriginalQty is set only when the classifier's repair pass
// replaced the quantity.
type LineItem struct {
	LineNumber      int             `json:"lineNumber"`
	SKU             string          `json:"sku,omitempty"`
	Description     string          `json:"description"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"-"`
	UnitPriceCents  int64           `json:"unitPriceCents"`
	LineTotalCents  int64           `json:"lineTotalCents"`
	Taxable         bool            `json:"taxable"`
	Category        string          `json:"category"`
	MathValidated   bool            `json:"mathValidated"`
	MathCorrected   bool            `json:"mathCorrected"`
	OriginalQty     *int64          `json:"originalQty,omitempty"`
	ProductCategory string          `json:"productCategory,omitempty"`
	DetectedUnits   string          `json:"detectedUnits,omitempty"`
	PricingType     string          `json:"pricingType,omitempty"`
	SourceLine      int             `json:"-"`
	Strategy        string          `json:"-"`
}

// Adjustment is a signed monetary event outside the item list: fees are
// positive, credits negative. Synthetic entries close reconciliation
// residuals and never come from document text.
type Adjustment struct {
	AdjustmentNumber int            `json:"adjustmentNumber"`
	Kind             AdjustmentKind `json:"kind"`
	Description      string         `json:"description"`
	AmountCents      int64          `json:"amountCents"`
	Raw              string         `json:"-"`
	Synthetic        bool           `json:"isSynthetic"`
}

// Totals holds the monetary summary of a parse. TotalCents is the
// authoritative figure committed by the reconciler; the printed and
// computed values are retained for auditing.
type Totals struct {
	SubtotalCents      int64  `json:"subtotalCents"`
	TaxCents           int64  `json:"taxCents"`
	AdjustmentsCents   int64  `json:"adjustmentsCents"`
	TotalCents         int64  `json:"totalCents"`
	PrintedTotalCents  int64  `json:"printedTotalCents"`
	ComputedTotalCents int64  `json:"computedTotalCents"`
	Currency           string `json:"currency"`
}

// TotalCandidate is one monetary figure the totals extractor found,
// ranked by label priority. Short-lived; consumed by the reconciler and
// the validator.
type TotalCandidate struct {
	Label      TotalLabel
	ValueCents int64
	Priority   int // 1 (highest) .. 4
	Context    string
	Score      int
	LineIndex  int
	Layout     string
}

// Header carries the invoice-level metadata fields.
type Header struct {
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	InvoiceDate   string `json:"invoiceDate,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	SoldTo        string `json:"soldTo,omitempty"`
	BillTo        string `json:"billTo,omitempty"`
	ShipTo        string `json:"shipTo,omitempty"`
}

// ParseCandidate is one strategy's attempt at a full invoice result.
// Several candidates compete per invoice; the chooser transfers ownership
// of the winner's item and adjustment slices into the final ParseResult.
type ParseCandidate struct {
	Vendor         VendorIdentity
	Strategy       string
	VendorSpecific bool
	Header         Header
	Totals         Totals
	Items          []LineItem
	Adjustments    []Adjustment
	Confidence     int // strategy-level self score
	Score          int // validator score, set by validateCandidate
	Report         ValidationReport
	RawLineCount   int
	order          int // registration order, last tie-break
}

// ScoreBreakdown itemizes the validation rubric.
type ScoreBreakdown struct {
	PrintedTotalScore    int               `json:"printedTotalScore"`
	ItemsSumScore        int               `json:"itemsSumScore"`
	AdjustmentsScore     int               `json:"adjustmentsScore"`
	HeaderScore          int               `json:"headerScore"`
	LineItemQualityScore int               `json:"lineItemQualityScore"`
	Penalties            int               `json:"penalties"`
	Details              map[string]string `json:"details,omitempty"`
}

// ValidationReport is the scored verdict on a candidate.
type ValidationReport struct {
	Score     int            `json:"score"`
	Issues    []string       `json:"issues"`
	Warnings  []string       `json:"warnings"`
	IsValid   bool           `json:"isValid"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// CandidateScore is the debug view of one competing candidate.
type CandidateScore struct {
	Strategy       string `json:"strategy"`
	VendorSpecific bool   `json:"vendorSpecific"`
	ItemCount      int    `json:"itemCount"`
	Score          int    `json:"score"`
}

// VendorScore is one vendor's fingerprint score during detection.
type VendorScore struct {
	Vendor string `json:"vendor"`
	Score  int    `json:"score"`
}

// TotalEvidence is the debug view of one total candidate.
type TotalEvidence struct {
	Label      string `json:"label"`
	ValueCents int64  `json:"valueCents"`
	Priority   int    `json:"priority"`
	Layout     string `json:"layout"`
	Context    string `json:"context"`
}

// DebugInfo is the opaque debug block attached when Options.Debug is set.
type DebugInfo struct {
	ParseID         string           `json:"parseId"`
	OriginalText    string           `json:"originalText"`
	VendorScores    []VendorScore    `json:"vendorScores"`
	CandidateScores []CandidateScore `json:"candidateScores"`
	TotalCandidates []TotalEvidence  `json:"totalCandidates"`
	Reconciliation  []string         `json:"reconciliation"`
	Quality         string           `json:"quality"`
}

// ParseResult is the terminal entity returned by Parse.
type ParseResult struct {
	Success       bool             `json:"success"`
	Error         string           `json:"error,omitempty"`
	Vendor        VendorIdentity   `json:"vendor"`
	ParserVersion string           `json:"parserVersion"`
	Header        Header           `json:"header"`
	Totals        Totals           `json:"totals"`
	LineItems     []LineItem       `json:"lineItems"`
	Adjustments   []Adjustment     `json:"adjustments"`
	Confidence    ValidationReport `json:"confidence"`
	Debug         *DebugInfo       `json:"debug,omitempty"`
}

// Options is the closed configuration for a Parse call.
type Options struct {
	// VendorHint bypasses vendor detection and forces the named vendor's
	// parser. Must be a known vendor key.
	VendorHint string
	// Strict runs only the vendor-specific parser, with no fallbacks.
	Strict bool
	// AggressiveClean allows garbage-line removal and conservative OCR
	// substitutions when text quality is poor.
	AggressiveClean bool
	// Debug attaches the debug block to the result.
	Debug bool
	// Logger receives strategy and reconciliation traces at debug level.
	// nil disables logging.
	Logger *zap.Logger
	// Store is the optional advisory pattern store. Its recommendations
	// reorder which vendor parser runs first; they never override the
	// validator or the reconciler.
	Store *PatternStore
}

// DefaultOptions returns the standard configuration: aggressive cleaning
// on, everything else off.
func DefaultOptions() Options {
	return Options{AggressiveClean: true}
}
