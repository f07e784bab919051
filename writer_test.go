package invoicetext

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func TestWriteXML(t *testing.T) {
	res := Parse(cintasInvoice, DefaultOptions())
	if !res.Success {
		t.Fatalf("parse failed: %s", res.Error)
	}

	var sb strings.Builder
	if err := res.WriteXML(&sb); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(sb.String()); err != nil {
		t.Fatalf("emitted XML does not parse: %v", err)
	}

	root := doc.SelectElement("ParsedInvoice")
	if root == nil {
		t.Fatal("missing ParsedInvoice root")
	}
	if got := root.SelectAttrValue("success", ""); got != "true" {
		t.Errorf("success attribute = %q", got)
	}

	totals := root.SelectElement("Totals")
	if totals == nil {
		t.Fatal("missing Totals element")
	}
	if got := totals.SelectElement("PayableAmount").Text(); got != "1998.14" {
		t.Errorf("PayableAmount = %q, want 1998.14", got)
	}

	lines := root.SelectElement("InvoiceLines")
	if lines == nil || len(lines.SelectElements("InvoiceLine")) != len(res.LineItems) {
		t.Error("line items not fully exported")
	}

	vendor := root.SelectElement("Vendor")
	if vendor == nil || vendor.SelectAttrValue("key", "") != "cintas" {
		t.Error("vendor element wrong or missing")
	}
}

func TestWriteXMLFailedParse(t *testing.T) {
	res := Parse("", DefaultOptions())

	var sb strings.Builder
	if err := res.WriteXML(&sb); err != nil {
		t.Fatalf("WriteXML on failed parse: %v", err)
	}
	if !strings.Contains(sb.String(), `error="empty_input"`) {
		t.Errorf("error attribute missing:\n%s", sb.String())
	}
}
