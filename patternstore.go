package invoicetext

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// The pattern store remembers which vendor and strategy worked for a
// document shape. It is advisory only: a recommendation may reorder which
// vendor parser runs first but never overrides the validator or the
// reconciler. Writes are best-effort and may be dropped.

// storeVersion is the on-disk document version.
const storeVersion = 1

// PatternEntry records one successful parse for a structural fingerprint.
type PatternEntry struct {
	Fingerprint  string   `json:"fingerprint"`
	Vendor       string   `json:"vendor"`
	Strategy     string   `json:"strategy"`
	Confidence   int      `json:"confidence"`
	ItemCount    int      `json:"itemCount"`
	TotalCents   int64    `json:"totalCents"`
	Features     []string `json:"features"`
	CreatedAt    string   `json:"createdAt"`
	SuccessCount int      `json:"successCount"`
	LastUsed     string   `json:"lastUsed"`
}

// FingerprintHit is the routing record for one fingerprint.
type FingerprintHit struct {
	Vendor     string `json:"vendor"`
	Strategy   string `json:"strategy"`
	Confidence int    `json:"confidence"`
}

// storeDocument is the JSON document at the configured path.
type storeDocument struct {
	Version        int                       `json:"version"`
	LastUpdated    string                    `json:"lastUpdated"`
	VendorPatterns map[string][]PatternEntry `json:"vendorPatterns"`
	FingerprintMap map[string]FingerprintHit `json:"fingerprintMap"`
	Stats          storeStats                `json:"stats"`
}

type storeStats struct {
	TotalParses      int `json:"totalParses"`
	SuccessfulParses int `json:"successfulParses"`
	PatternsLearned  int `json:"patternsLearned"`
}

// PatternStore is the process-wide handle. Readers load the file at most
// once and serve from memory; the single-writer lock covers the
// read-modify-write cycle and the atomic rename keeps concurrent
// processes from seeing a torn document.
type PatternStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	doc    storeDocument
}

// OpenPatternStore returns a store backed by the JSON document at path.
// The file does not need to exist yet.
func OpenPatternStore(path string) *PatternStore {
	return &PatternStore{path: path}
}

func (ps *PatternStore) load() {
	if ps.loaded {
		return
	}
	ps.loaded = true
	ps.doc = storeDocument{
		Version:        storeVersion,
		VendorPatterns: map[string][]PatternEntry{},
		FingerprintMap: map[string]FingerprintHit{},
	}

	data, err := os.ReadFile(ps.path)
	if err != nil {
		return
	}
	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != storeVersion {
		return
	}
	if doc.VendorPatterns == nil {
		doc.VendorPatterns = map[string][]PatternEntry{}
	}
	if doc.FingerprintMap == nil {
		doc.FingerprintMap = map[string]FingerprintHit{}
	}
	ps.doc = doc
}

// Recommend returns the routing hit for a document fingerprint, if one
// was learned.
func (ps *PatternStore) Recommend(fingerprint string) (FingerprintHit, bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.load()
	hit, ok := ps.doc.FingerprintMap[fingerprint]
	return hit, ok
}

// Record stores the outcome of a parse under the document fingerprint.
// Failures only bump the counters. The write is best-effort: an
// unwritable path loses the update silently.
func (ps *PatternStore) Record(fingerprint string, features []string, result *ParseResult) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.load()

	now := time.Now().UTC().Format(time.RFC3339)
	ps.doc.Stats.TotalParses++
	if result == nil || !result.Success {
		ps.doc.LastUpdated = now
		_ = ps.flushLocked()
		return
	}
	ps.doc.Stats.SuccessfulParses++

	vendor := result.Vendor.Key.String()
	strategy := ""
	if len(result.LineItems) > 0 {
		strategy = result.LineItems[0].Strategy
	}

	if hit, ok := ps.doc.FingerprintMap[fingerprint]; ok {
		entries := ps.doc.VendorPatterns[hit.Vendor]
		for i := range entries {
			if entries[i].Fingerprint == fingerprint {
				entries[i].SuccessCount++
				entries[i].LastUsed = now
			}
		}
	} else {
		ps.doc.FingerprintMap[fingerprint] = FingerprintHit{
			Vendor:     vendor,
			Strategy:   strategy,
			Confidence: result.Confidence.Score,
		}
		ps.doc.VendorPatterns[vendor] = append(ps.doc.VendorPatterns[vendor], PatternEntry{
			Fingerprint:  fingerprint,
			Vendor:       vendor,
			Strategy:     strategy,
			Confidence:   result.Confidence.Score,
			ItemCount:    len(result.LineItems),
			TotalCents:   result.Totals.TotalCents,
			Features:     features,
			CreatedAt:    now,
			SuccessCount: 1,
			LastUsed:     now,
		})
		ps.doc.Stats.PatternsLearned++
	}

	ps.doc.LastUpdated = now
	_ = ps.flushLocked()
}

// flushLocked writes the document atomically: temp file in the same
// directory, then rename.
func (ps *PatternStore) flushLocked() error {
	data, err := json.MarshalIndent(ps.doc, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(ps.path)
	tmp, err := os.CreateTemp(dir, ".patternstore-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, ps.path)
}

// Fingerprint hashes the structural features of a document into twelve
// hex digits: line-count bucket, character-class flags, header keyword
// presence and vendor-name presence.
func Fingerprint(doc InvoiceText) (string, []string) {
	features := fingerprintFeatures(doc)
	sorted := append([]string(nil), features...)
	sort.Strings(sorted)
	sum := xxhash.Sum64String(strings.Join(sorted, "|"))
	return fmt.Sprintf("%012x", sum)[:12], features
}

func fingerprintFeatures(doc InvoiceText) []string {
	var features []string

	bucket := len(doc.Lines) / 20
	if bucket > 9 {
		bucket = 9
	}
	features = append(features, fmt.Sprintf("lines:%d", bucket))

	upper := strings.ToUpper(doc.Normalized)
	if strings.Contains(upper, "$") {
		features = append(features, "has:dollar")
	}
	if reMoneyToken.MatchString(doc.Normalized) {
		features = append(features, "has:money")
	}
	if strings.ContainsAny(doc.Normalized, "\t|") {
		features = append(features, "has:delimiters")
	}

	for _, kw := range []string{"QTY", "DESCRIPTION", "UNIT PRICE", "SUBTOTAL", "INVOICE"} {
		if strings.Contains(upper, kw) {
			features = append(features, "kw:"+strings.ToLower(strings.ReplaceAll(kw, " ", "-")))
		}
	}

	for _, sig := range builtinSignatures {
		for _, tok := range sig.NameTokens {
			if strings.Contains(upper, strings.ToUpper(tok)) {
				features = append(features, "vendor:"+sig.Key.String())
				break
			}
		}
	}
	return features
}
