package invoicetext

// Rule defines a validation rule with its code, the result fields it
// concerns, and its specification. Rules are used to create issues and
// warnings in a uniform, auditable way.
type Rule struct {
	Code        string
	Fields      []string
	Description string
}

// Validation rules.
//
// Naming convention:
// - VR-T-*: printed-total sanity
// - VR-I-*: item-sum reconciliation and item quality
// - VR-A-*: adjustments and tax plausibility
// - VR-H-*: header completeness
// - VR-P-*: penalties (contamination, garbage, variance)
// - VR-R-*: reconciliation outcomes
var (
	VRT1 = Rule{
		Code:        "VR-T-1",
		Fields:      []string{"totals.printedTotalCents"},
		Description: "No invoice total could be extracted from the document",
	}

	VRT2 = Rule{
		Code:        "VR-T-2",
		Fields:      []string{"totals.subtotalCents", "totals.taxCents", "totals.printedTotalCents"},
		Description: "Subtotal plus tax diverges from the printed total",
	}

	VRI1 = Rule{
		Code:        "VR-I-1",
		Fields:      []string{"lineItems"},
		Description: "Sum of line totals diverges from the extracted subtotal or total",
	}

	VRI2 = Rule{
		Code:        "VR-I-2",
		Fields:      []string{"lineItems"},
		Description: "Many line items fail quantity × unit price validation",
	}

	VRI3 = Rule{
		Code:        "VR-I-3",
		Fields:      []string{"lineItems"},
		Description: "Quantity corrections were applied during math repair",
	}

	VRA1 = Rule{
		Code:        "VR-A-1",
		Fields:      []string{"totals.taxCents"},
		Description: "Tax amount is implausible relative to the subtotal",
	}

	VRA2 = Rule{
		Code:        "VR-A-2",
		Fields:      []string{"totals.taxCents"},
		Description: "No tax line was found on the document",
	}

	VRH1 = Rule{
		Code:        "VR-H-1",
		Fields:      []string{"header"},
		Description: "Header is missing invoice number, date, vendor or customer",
	}

	VRP1 = Rule{
		Code:        "VR-P-1",
		Fields:      []string{"lineItems"},
		Description: "Items look like group or section subtotals, not products",
	}

	VRP2 = Rule{
		Code:        "VR-P-2",
		Fields:      []string{"lineItems"},
		Description: "Items match garbage patterns (addresses, summaries, totals)",
	}

	VRP3 = Rule{
		Code:        "VR-P-3",
		Fields:      []string{"totals"},
		Description: "Large variance between computed and printed totals",
	}

	VRR1 = Rule{
		Code:        "VR-R-1",
		Fields:      []string{"adjustments"},
		Description: "A synthetic adjustment was added to close the reconciliation residual",
	}

	VRR2 = Rule{
		Code:        "VR-R-2",
		Fields:      []string{"totals.totalCents"},
		Description: "No printed total was found; the computed total is authoritative",
	}

	VRR3 = Rule{
		Code:        "VR-R-3",
		Fields:      []string{"totals.totalCents"},
		Description: "A lower-priority total candidate had a different value than the chosen one",
	}
)

// issue renders a rule violation as a report string; the caller files it
// under issues or warnings.
func issue(r Rule, detail string) string {
	if detail == "" {
		return r.Code + ": " + r.Description
	}
	return r.Code + ": " + r.Description + " (" + detail + ")"
}
