package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PDF text extraction for invoices delivered as native (non-scanned)
// PDFs. pdfcpu decodes the page content streams; the text operators in
// them carry the extractable strings. Scanned PDFs have no text content
// and must go through OCR before reaching this tool.

// reTextShow matches the argument of Tj/TJ text-showing operators inside
// a decoded content stream.
var reTextShow = regexp.MustCompile(`\((?:\\.|[^\\()])*\)\s*Tj|\[((?:\((?:\\.|[^\\()])*\)|[^\[\]])*)\]\s*TJ`)

var rePDFString = regexp.MustCompile(`\((?:\\.|[^\\()])*\)`)

// extractTextFromPDF pulls the text content out of every page of the
// PDF, one line per text-showing operation.
func extractTextFromPDF(filename string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "invoicetext-pdf-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := api.ExtractContentFile(filename, tmpDir, nil, nil); err != nil {
		return "", fmt.Errorf("cannot extract PDF content: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for i, name := range names {
		f, err := os.Open(filepath.Join(tmpDir, name))
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			continue
		}
		if i > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(contentStreamText(string(data)))
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s contains no extractable text (scanned document?)", filename)
	}
	return text, nil
}

// contentStreamText collects the string arguments of the text-showing
// operators in one content stream.
func contentStreamText(stream string) string {
	var sb strings.Builder
	for _, op := range reTextShow.FindAllString(stream, -1) {
		for _, lit := range rePDFString.FindAllString(op, -1) {
			sb.WriteString(decodePDFString(lit))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// decodePDFString unescapes a PDF literal string "(...)".
func decodePDFString(lit string) string {
	lit = strings.TrimSuffix(strings.TrimPrefix(lit, "("), ")")
	replacer := strings.NewReplacer(
		`\n`, "\n", `\r`, "", `\t`, " ",
		`\(`, "(", `\)`, ")", `\\`, `\`,
	)
	return replacer.Replace(lit)
}
