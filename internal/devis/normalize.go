package devis

import (
	"regexp"
	"strings"
)

var hspaceRe = regexp.MustCompile(`[ \t]+`)

// NormalizeSpaces prepares text for line reconstruction: non-breaking spaces
// become regular spaces, carriage returns become newlines, runs of horizontal
// whitespace collapse to a single space, and the result is trimmed. Total
// over any input, including empty.
func NormalizeSpaces(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = hspaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
