// Package detect extracts jurisdiction references from free-text questions.
// Detection is heuristic by nature, so the strategy is pluggable: the shipped
// AliasDetector is a deterministic lexical scan; an LLM-backed extractor can
// replace it behind the same interface without touching the retriever.
package detect

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"legalrag/types"
)

// Detector resolves the jurisdictions a question refers to. Implementations
// never fail: unrecognized tokens are ignored.
type Detector interface {
	Detect(question string, known []string) types.CountryDetection
}

// AliasDetector scans for ISO 3166-1 alpha-2 codes, country names and
// adjectival forms, and expands well-known multi-country groupings.
type AliasDetector struct{}

func NewAliasDetector() *AliasDetector {
	return &AliasDetector{}
}

func (d *AliasDetector) Detect(question string, known []string) types.CountryDetection {
	found := make(map[string]struct{})

	// Bare two-letter codes count only when they appear uppercase in the
	// original text; "it" and "in" are words, "IT" and "IN" are countries.
	for _, tok := range splitWords(question) {
		if len(tok) == 2 && tok == strings.ToUpper(tok) {
			if _, ok := isoCodes[tok]; ok {
				found[tok] = struct{}{}
			}
		}
	}

	padded := " " + normalizeWords(question) + " "
	for alias, code := range countryAliases {
		if strings.Contains(padded, " "+alias+" ") {
			found[code] = struct{}{}
		}
	}
	for alias, codes := range groupAliases {
		if strings.Contains(padded, " "+alias+" ") {
			for _, code := range codes {
				found[code] = struct{}{}
			}
		}
	}

	detected := make([]string, 0, len(found))
	for code := range found {
		detected = append(detected, code)
	}
	sort.Strings(detected)

	knownSet := make(map[string]struct{}, len(known))
	for _, code := range known {
		knownSet[strings.ToUpper(code)] = struct{}{}
	}
	available := make([]string, 0, len(detected))
	for _, code := range detected {
		if _, ok := knownSet[code]; ok {
			available = append(available, code)
		}
	}

	return types.CountryDetection{
		ISOCodes:  detected,
		Available: available,
		Summary:   summarize(detected, available),
	}
}

func summarize(detected, available []string) string {
	if len(detected) == 0 {
		return "No specific jurisdiction detected; the question is treated as a cross-jurisdiction query."
	}
	return fmt.Sprintf("Detected %d jurisdiction(s) (%s), of which %d have indexed content.",
		len(detected), strings.Join(detected, ", "), len(available))
}

// splitWords breaks text on anything that is not a letter, preserving case.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// normalizeWords lowercases and collapses non-letter runs to single spaces so
// multi-word aliases match across punctuation.
func normalizeWords(s string) string {
	return strings.Join(splitWords(strings.ToLower(s)), " ")
}
