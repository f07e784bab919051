package invoicetext

import (
	"strings"
	"testing"
)

func TestExtractHeader(t *testing.T) {
	doc := Normalize(strings.Join([]string{
		"ACME RESTAURANT SUPPLY",
		"INVOICE NO: INV-2025-0042",
		"DATE: 06/15/2025",
		"ACCOUNT #: 88123",
		"CUSTOMER: RIVERSIDE GRILL",
		"SOLD TO: RIVERSIDE GRILL LLC",
		"SHIP TO: 412 COMMERCE BLVD",
	}, "\n"))

	h := ExtractHeader(doc, TableLayout{HeaderLine: -1})
	if h.InvoiceNumber != "INV-2025-0042" {
		t.Errorf("invoice number = %q", h.InvoiceNumber)
	}
	if h.InvoiceDate != "06/15/2025" {
		t.Errorf("invoice date = %q", h.InvoiceDate)
	}
	if h.AccountNumber != "88123" {
		t.Errorf("account number = %q", h.AccountNumber)
	}
	if h.CustomerName == "" {
		t.Error("customer name missing")
	}
	if h.SoldTo == "" || h.ShipTo == "" {
		t.Errorf("sold-to/ship-to missing: %+v", h)
	}
}

func TestExtractHeaderIgnoresLabelWords(t *testing.T) {
	doc := Normalize("INVOICE TOTAL 890.12\nINVOICE DATE: 01/02/2025\n")
	h := ExtractHeader(doc, TableLayout{HeaderLine: -1})
	if h.InvoiceNumber == "TOTAL" || h.InvoiceNumber == "DATE" {
		t.Errorf("label word captured as invoice number: %q", h.InvoiceNumber)
	}
	if h.InvoiceDate != "01/02/2025" {
		t.Errorf("invoice date = %q", h.InvoiceDate)
	}
}
