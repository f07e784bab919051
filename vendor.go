package invoicetext

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vendor detection fingerprints a document against known signatures.
// Detection drives which specialized parser runs first; it never gates
// running the fallback strategies.

const vendorThreshold = 50

// VendorSignature describes one vendor's fingerprint set.
type VendorSignature struct {
	Key         VendorKey
	DisplayName string
	// NameTokens are strong evidence: vendor names and address fragments.
	NameTokens []string
	// Phrases are characteristic layout phrases, weaker than names.
	Phrases []string
	// SKUPattern matches the vendor's item-code shape.
	SKUPattern *regexp.Regexp
}

var builtinSignatures = []VendorSignature{
	{
		Key:         VendorCintas,
		DisplayName: "Cintas Corporation",
		NameTokens:  []string{"CINTAS", "CINTAS CORP", "CINTAS CORPORATION", "MASON OH"},
		Phrases:     []string{"TOTAL USD", "UNIFORM RENTAL", "FACILITY SERVICES", "RENTAL SERVICE AGREEMENT"},
		SKUPattern:  regexp.MustCompile(`\b\d{4,6}\b`),
	},
	{
		Key:         VendorSysco,
		DisplayName: "Sysco Corporation",
		NameTokens:  []string{"SYSCO", "SYSCO FOOD", "SYSCO CORPORATION", "HOUSTON TX"},
		Phrases:     []string{"TOTAL DUE", "CASES SPLIT", "FILL RATE", "GROUP TOTAL"},
		SKUPattern:  regexp.MustCompile(`\b\d{7}\b`),
	},
	{
		Key:         VendorUSFoods,
		DisplayName: "US Foods, Inc.",
		NameTokens:  []string{"US FOODS", "USFOODS", "U.S. FOODS", "ROSEMONT IL"},
		Phrases:     []string{"INVOICE TOTAL", "FOR ALL NON-PAYMENT", "DROP SIZE", "CHGS FOR"},
		SKUPattern:  regexp.MustCompile(`\b\d{6,8}\b`),
	},
}

// yamlSignature is the on-disk form of an extra vendor signature pack.
type yamlSignature struct {
	Key         string   `yaml:"key"`
	DisplayName string   `yaml:"display_name"`
	NameTokens  []string `yaml:"name_tokens"`
	Phrases     []string `yaml:"phrases"`
	SKUPattern  string   `yaml:"sku_pattern"`
}

// LoadVendorSignatures reads additional signatures from a YAML document
// and returns the built-in set with them appended; a loaded signature
// does not replace a built-in one with the same key. Signatures for
// unknown vendor keys are rejected.
func LoadVendorSignatures(path string) ([]VendorSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read vendor signatures: %w", err)
	}

	var raw []yamlSignature
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cannot parse vendor signatures: %w", err)
	}

	sigs := append([]VendorSignature{}, builtinSignatures...)
	for _, ys := range raw {
		key, err := VendorKeyFromString(ys.Key)
		if err != nil {
			return nil, err
		}
		sig := VendorSignature{
			Key:         key,
			DisplayName: ys.DisplayName,
			NameTokens:  ys.NameTokens,
			Phrases:     ys.Phrases,
		}
		if ys.SKUPattern != "" {
			re, err := regexp.Compile(ys.SKUPattern)
			if err != nil {
				return nil, fmt.Errorf("bad sku_pattern for %s: %w", ys.Key, err)
			}
			sig.SKUPattern = re
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// DetectVendor scores every signature against the document and returns
// the best match when its confidence reaches the threshold, else the
// generic identity. The per-vendor scores are returned for the debug
// block.
func DetectVendor(doc InvoiceText) (VendorIdentity, []VendorScore) {
	return detectVendorWith(doc, builtinSignatures)
}

func detectVendorWith(doc InvoiceText, sigs []VendorSignature) (VendorIdentity, []VendorScore) {
	upper := strings.ToUpper(doc.Normalized)

	type scored struct {
		sig   VendorSignature
		score int
	}
	var results []scored
	for _, sig := range sigs {
		results = append(results, scored{sig: sig, score: scoreSignature(upper, sig)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	var scores []VendorScore
	for _, r := range results {
		scores = append(scores, VendorScore{Vendor: r.sig.Key.String(), Score: r.score})
	}

	if len(results) > 0 && results[0].score >= vendorThreshold {
		best := results[0]
		conf := best.score
		if conf > 100 {
			conf = 100
		}
		return VendorIdentity{Key: best.sig.Key, DisplayName: best.sig.DisplayName, Confidence: conf}, scores
	}
	return VendorIdentity{Key: VendorGeneric, DisplayName: "Generic", Confidence: 0}, scores
}

func scoreSignature(upper string, sig VendorSignature) int {
	score := 0
	for _, tok := range sig.NameTokens {
		if strings.Contains(upper, strings.ToUpper(tok)) {
			score += 30
		}
	}
	for _, ph := range sig.Phrases {
		if strings.Contains(upper, strings.ToUpper(ph)) {
			score += 10
		}
	}
	if sig.SKUPattern != nil {
		matches := sig.SKUPattern.FindAllString(upper, 6)
		if len(matches) >= 3 {
			score += 10
		}
	}
	return score
}

// BuiltinVendorSignatures returns a copy of the built-in signature set.
func BuiltinVendorSignatures() []VendorSignature {
	return append([]VendorSignature{}, builtinSignatures...)
}

// signatureFor returns the built-in signature for a vendor key, if any.
func signatureFor(key VendorKey) *VendorSignature {
	for i := range builtinSignatures {
		if builtinSignatures[i].Key == key {
			return &builtinSignatures[i]
		}
	}
	return nil
}
