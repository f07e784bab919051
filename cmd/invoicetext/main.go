// Command invoicetext parses raw invoice text into a reconciled,
// validated result.
package main

import (
	"fmt"
	"os"
)

const (
	exitOK     = 0 // Parse succeeded and validation passed
	exitIssues = 1 // Parse succeeded with validation issues
	exitError  = 2 // Error occurred (file not found, no valid parse, ...)
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		usage()
		return exitError
	}

	switch os.Args[1] {
	case "parse":
		return runParse(os.Args[2:])
	case "validate":
		return runValidate(os.Args[2:])
	case "vendors":
		return runVendors(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: invoicetext <command> [options]

Commands:
  parse       Parse an invoice (text or PDF) and print the result as JSON
  validate    Parse an invoice and report only the validation verdict
  vendors     List the known vendor signatures

Use "invoicetext <command> --help" for more information about a command.
`)
}
