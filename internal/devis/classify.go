package devis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	leadingCodeRe  = regexp.MustCompile(`^\d+(?:\.\d+)*\s+`)
	currencyTailRe = regexp.MustCompile(`(?i)\s+\d+(?:[.,]\d+)?\s*€.*$`)
	percentTailRe  = regexp.MustCompile(`(?i)\s+\d+(?:[.,]\d+)?\s*%.*$`)
	labelTailRe    = regexp.MustCompile(`(?i)\b(?:TOTAL|HT|TTC|TVA)\b.*$`)

	// Short all-caps runs (place names, column headers) masquerading as
	// designations. The class mirrors the source grammar and also covers
	// accented capitals.
	allCapsRe = regexp.MustCompile(`^[A-ZÀ-ÿ\s\-']+$`)

	headerRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.+)$`)
)

type headerMatch struct {
	code  string
	title string
	level int
}

// cleanDesignation strips what must never reach storage: a residual leading
// hierarchy code, currency-amount tails, percentage tails and
// TOTAL/HT/TTC/TVA label tails.
func cleanDesignation(raw string) string {
	s := NormalizeSpaces(raw)
	s = strings.TrimSpace(leadingCodeRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(currencyTailRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(percentTailRe.ReplaceAllString(s, ""))
	s = strings.TrimSpace(labelTailRe.ReplaceAllString(s, ""))
	return NormalizeSpaces(s)
}

// parseQuantity parses a French-formatted quantity token (comma or dot
// decimals). Returns false for anything non-finite.
func parseQuantity(tok string) (float64, bool) {
	tok = strings.ReplaceAll(tok, " ", "")
	tok = strings.ReplaceAll(tok, ",", ".")
	n, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// matchItem attempts the priced-line-item match: optional code, designation,
// quantity, unit; trailing price/tax text is tolerated but discarded. On a
// structural match that fails a field constraint it returns a nil item with
// the rejection reason, and the caller falls through to the header match.
func (p *Parser) matchItem(line string) (*Line, string) {
	m := p.itemRe.FindStringSubmatch(line)
	if m == nil {
		return nil, ""
	}

	code := strings.TrimSpace(m[1])
	qty, ok := parseQuantity(m[3])
	if !ok || qty <= 0 {
		return nil, "quantity not positive"
	}
	unit := strings.TrimSpace(m[4])
	if unit == "" {
		return nil, "unit missing"
	}

	designation := cleanDesignation(m[2])
	if utf8.RuneCountInString(designation) < p.rules.MinDesignationLen {
		return nil, "designation too short"
	}
	if allCapsRe.MatchString(designation) && utf8.RuneCountInString(designation) < 30 {
		return nil, "designation looks like a heading"
	}

	return &Line{
		Code:        code,
		Designation: designation,
		Quantite:    qty,
		Unite:       unit,
	}, ""
}

// matchHeader attempts the hierarchy-header match: dotted numeric code plus
// a title. Level is the number of dot-separated code segments.
func (p *Parser) matchHeader(line string) (*headerMatch, string) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return nil, ""
	}

	title := cleanDesignation(m[2])
	if utf8.RuneCountInString(title) < p.rules.MinTitleLen {
		return nil, "title too short"
	}
	if p.isBoilerplate(title) {
		return nil, "title is boilerplate"
	}

	code := m[1]
	return &headerMatch{
		code:  code,
		title: title,
		level: strings.Count(code, ".") + 1,
	}, ""
}
