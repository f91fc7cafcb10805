package devis

import (
	"regexp"
	"sort"
	"strings"
)

// Parser is the devis text parsing engine. It is a pure function from
// extracted text to a Result: no I/O, no shared state across calls, safe for
// concurrent use once built. Build one with NewParser and reuse it; the
// grammar regexps are compiled once.
type Parser struct {
	rules Rules

	itemTailBreakRe *regexp.Regexp
	itemRe          *regexp.Regexp
	streetLineRe    *regexp.Regexp

	lowerTokens []string
}

// NewParser compiles the grammar for the given rules. Non-positive
// thresholds fall back to their defaults.
func NewParser(rules Rules) *Parser {
	def := DefaultRules()
	if len(rules.Units) == 0 {
		rules.Units = def.Units
	}
	if len(rules.BoilerplateTokens) == 0 {
		rules.BoilerplateTokens = def.BoilerplateTokens
	}
	if len(rules.StreetWords) == 0 {
		rules.StreetWords = def.StreetWords
	}
	if rules.MinDesignationLen <= 0 {
		rules.MinDesignationLen = def.MinDesignationLen
	}
	if rules.MinTitleLen <= 0 {
		rules.MinTitleLen = def.MinTitleLen
	}
	if rules.OversizeLineLen <= 0 {
		rules.OversizeLineLen = def.OversizeLineLen
	}
	if rules.MinTextLen <= 0 {
		rules.MinTextLen = def.MinTextLen
	}

	unitAlt := unitAlternation(rules.Units)

	p := &Parser{
		rules: rules,

		// A priced row ends with "qty unit", optionally followed by a
		// unit-price and a tax-rate column. Breaking after that tail
		// recovers rows glued back to back. The trailing \s+ doubles as
		// the unit's word boundary ("2 m" never matches inside "2 murs").
		itemTailBreakRe: regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s*(?:` + unitAlt + `)(?:\s+\d+(?:[.,]\d+)?\s*€)?(?:\s+\d+(?:[.,]\d+)?\s*%)?)\s+`),

		// Optional leading hierarchy code, non-greedy designation, quantity
		// with comma or dot decimals, then a unit token. Whatever follows
		// the unit (unit price, currency, tax rate) is never captured.
		itemRe: regexp.MustCompile(`(?i)^(?:(\d+(?:\.\d+)*)\s+)?(.+?)\s+(\d+(?:[.,]\d+)?)\s*(` + unitAlt + `)(?:[^\p{L}\p{N}]|$)`),

		streetLineRe: regexp.MustCompile(`(?i)^\d+\s+(?:` + streetAlternation(rules.StreetWords) + `)`),
	}

	p.lowerTokens = make([]string, len(rules.BoilerplateTokens))
	for i, t := range rules.BoilerplateTokens {
		p.lowerTokens[i] = strings.ToLower(t)
	}
	return p
}

// Rules returns the effective rules the parser was built with.
func (p *Parser) Rules() Rules {
	return p.rules
}

// unitAlternation builds the unit token alternation, longest token first so
// "m²" wins over "m" and "m2" over "m".
func unitAlternation(units []string) string {
	sorted := make([]string, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	quoted := make([]string, len(sorted))
	for i, u := range sorted {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return strings.Join(quoted, "|")
}

// streetAlternation builds the street-word alternation. Words ending with a
// dot ("av.") are complete as-is; bare words get a word boundary so "bd"
// does not match inside "bdxyz".
func streetAlternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		if strings.HasSuffix(w, ".") {
			quoted[i] = regexp.QuoteMeta(w)
		} else {
			quoted[i] = regexp.QuoteMeta(w) + `\b`
		}
	}
	return strings.Join(quoted, "|")
}
