package main

import (
	"flag"
	"fmt"
	"os"

	invoicetext "github.com/parsight/invoicetext"
)

func runVendors(args []string) int {
	fs := flag.NewFlagSet("vendors", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: invoicetext vendors\n\nLists the known vendor signatures, including any loaded from\nINVOICETEXT_VENDOR_SIGNATURES.\n")
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	sigs := invoicetext.BuiltinVendorSignatures()
	if cfg.VendorSignatures != "" {
		loaded, err := invoicetext.LoadVendorSignatures(cfg.VendorSignatures)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		sigs = loaded
	}

	for _, sig := range sigs {
		fmt.Printf("%-10s %s\n", sig.Key, sig.DisplayName)
	}
	return exitOK
}
