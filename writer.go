package invoicetext

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// XML export for downstream billing systems that want a document instead
// of JSON. The vocabulary is a compact UBL-flavoured subset: header,
// monetary totals, adjustments, line items.

// WriteXML writes the parse result as an XML document.
func (res *ParseResult) WriteXML(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ParsedInvoice")
	root.CreateAttr("version", ParserVersion)
	root.CreateAttr("success", fmt.Sprintf("%t", res.Success))
	if res.Error != "" {
		root.CreateAttr("error", res.Error)
	}

	vendor := root.CreateElement("Vendor")
	vendor.CreateAttr("key", res.Vendor.Key.String())
	vendor.CreateAttr("confidence", fmt.Sprintf("%d", res.Vendor.Confidence))
	vendor.SetText(res.Vendor.DisplayName)

	header := root.CreateElement("Header")
	setChild(header, "InvoiceNumber", res.Header.InvoiceNumber)
	setChild(header, "InvoiceDate", res.Header.InvoiceDate)
	setChild(header, "CustomerName", res.Header.CustomerName)
	setChild(header, "AccountNumber", res.Header.AccountNumber)
	setChild(header, "SoldTo", res.Header.SoldTo)
	setChild(header, "BillTo", res.Header.BillTo)
	setChild(header, "ShipTo", res.Header.ShipTo)

	totals := root.CreateElement("Totals")
	totals.CreateAttr("currencyID", res.Totals.Currency)
	setAmount(totals, "SubtotalAmount", res.Totals.SubtotalCents)
	setAmount(totals, "TaxAmount", res.Totals.TaxCents)
	setAmount(totals, "AdjustmentsAmount", res.Totals.AdjustmentsCents)
	setAmount(totals, "PrintedTotalAmount", res.Totals.PrintedTotalCents)
	setAmount(totals, "ComputedTotalAmount", res.Totals.ComputedTotalCents)
	setAmount(totals, "PayableAmount", res.Totals.TotalCents)

	if len(res.Adjustments) > 0 {
		adjustments := root.CreateElement("Adjustments")
		for _, a := range res.Adjustments {
			adj := adjustments.CreateElement("Adjustment")
			adj.CreateAttr("number", fmt.Sprintf("%d", a.AdjustmentNumber))
			adj.CreateAttr("kind", a.Kind.String())
			adj.CreateAttr("synthetic", fmt.Sprintf("%t", a.Synthetic))
			setChild(adj, "Description", a.Description)
			setAmount(adj, "Amount", a.AmountCents)
		}
	}

	lines := root.CreateElement("InvoiceLines")
	for _, it := range res.LineItems {
		line := lines.CreateElement("InvoiceLine")
		line.CreateAttr("number", fmt.Sprintf("%d", it.LineNumber))
		setChild(line, "SKU", it.SKU)
		setChild(line, "Description", it.Description)
		line.CreateElement("Quantity").SetText(fmt.Sprintf("%d", it.Quantity))
		setAmount(line, "UnitPrice", it.UnitPriceCents)
		setAmount(line, "LineTotal", it.LineTotalCents)
		if it.MathCorrected && it.OriginalQty != nil {
			line.CreateElement("OriginalQuantity").SetText(fmt.Sprintf("%d", *it.OriginalQty))
		}
	}

	confidence := root.CreateElement("Confidence")
	confidence.CreateAttr("score", fmt.Sprintf("%d", res.Confidence.Score))
	confidence.CreateAttr("valid", fmt.Sprintf("%t", res.Confidence.IsValid))
	for _, is := range res.Confidence.Issues {
		confidence.CreateElement("Issue").SetText(is)
	}
	for _, wn := range res.Confidence.Warnings {
		confidence.CreateElement("Warning").SetText(wn)
	}

	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

func setChild(parent *etree.Element, name, value string) {
	if value == "" {
		return
	}
	parent.CreateElement(name).SetText(value)
}

func setAmount(parent *etree.Element, name string, cents int64) {
	parent.CreateElement(name).SetText(centsToDecimal(cents).StringFixed(2))
}
