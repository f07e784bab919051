package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	invoicetext "github.com/parsight/invoicetext"
)

func runParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	vendorHint := fs.String("vendor", "", "force a vendor parser (cintas, sysco, usfoods)")
	strict := fs.Bool("strict", false, "run only the vendor-specific parser")
	noClean := fs.Bool("no-clean", false, "disable aggressive cleaning of poor-quality text")
	xmlOut := fs.Bool("xml", false, "emit XML instead of JSON")
	verbose := fs.Bool("v", false, "log pipeline traces to stderr")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: invoicetext parse [options] <file>\n\nParses invoice text (or a PDF with extractable text) and prints the result.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}

	res, code := parseFile(fs.Arg(0), *vendorHint, *strict, *noClean, *verbose)
	if res == nil {
		return code
	}

	if *xmlOut {
		if err := res.WriteXML(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		fmt.Println()
		return code
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
	return code
}

// parseFile loads a document (PDF or plain text), runs the engine and
// maps the outcome to an exit code.
func parseFile(filename, vendorHint string, strict, noClean, verbose bool) (*invoicetext.ParseResult, int) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, exitError
	}

	text, err := loadDocument(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, exitError
	}

	opts := invoicetext.DefaultOptions()
	opts.VendorHint = vendorHint
	opts.Strict = strict
	opts.AggressiveClean = !noClean
	opts.Debug = cfg.Debug
	if cfg.PatternStore != "" {
		opts.Store = invoicetext.OpenPatternStore(cfg.PatternStore)
	}
	if verbose {
		logger, lerr := zap.NewDevelopment()
		if lerr == nil {
			defer func() { _ = logger.Sync() }()
			opts.Logger = logger
		}
	}

	res := invoicetext.Parse(text, opts)
	switch {
	case !res.Success:
		return res, exitError
	case !res.Confidence.IsValid:
		return res, exitIssues
	default:
		return res, exitOK
	}
}

// loadDocument reads the file, pulling text out of PDFs when needed.
func loadDocument(filename string) (string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return extractTextFromPDF(filename)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", filename, err)
	}
	return string(data), nil
}
