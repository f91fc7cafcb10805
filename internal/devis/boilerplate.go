package devis

import (
	"regexp"
	"strings"
)

// "56890 Plescop" — five-digit postal code followed by a place name.
var postalLineRe = regexp.MustCompile(`(?i)^\d{5}\s+[a-zàâäéèêëîïôöùûüç'\- ]+$`)

// isBoilerplate rejects administrative noise before classification:
// registry/tax labels, contact and address labels, document metadata,
// totals, table headers, pagination, plus postal and street address lines.
// Deliberately over-inclusive; a missed noise line that also fails both
// classifications is dropped there anyway.
func (p *Parser) isBoilerplate(line string) bool {
	l := strings.ToLower(line)
	for _, tok := range p.lowerTokens {
		if strings.Contains(l, tok) {
			return true
		}
	}
	if postalLineRe.MatchString(line) {
		return true
	}
	if p.streetLineRe.MatchString(line) {
		return true
	}
	return false
}
