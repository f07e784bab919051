package main

import (
	"flag"
	"fmt"
	"os"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	vendorHint := fs.String("vendor", "", "force a vendor parser (cintas, sysco, usfoods)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: invoicetext validate [options] <file>\n\nParses the invoice and prints the validation verdict.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}

	res, code := parseFile(fs.Arg(0), *vendorHint, false, false, false)
	if res == nil {
		return code
	}
	if !res.Success {
		fmt.Printf("parse failed: %s\n", res.Error)
		return exitError
	}

	fmt.Printf("vendor:  %s (%d%%)\n", res.Vendor.Key, res.Vendor.Confidence)
	fmt.Printf("total:   %s %s\n", centsString(res.Totals.TotalCents), res.Totals.Currency)
	fmt.Printf("items:   %d\n", len(res.LineItems))
	fmt.Printf("score:   %d\n", res.Confidence.Score)

	for _, is := range res.Confidence.Issues {
		fmt.Printf("issue:   %s\n", is)
	}
	for _, wn := range res.Confidence.Warnings {
		fmt.Printf("warning: %s\n", wn)
	}

	if res.Confidence.IsValid {
		fmt.Println("valid")
		return exitOK
	}
	fmt.Println("not valid")
	return exitIssues
}

func centsString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
