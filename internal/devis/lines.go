package devis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Logical line reconstruction. PDF text extraction tends to hand back one
// glued blob per page with unreliable breaks, so a fixed sequence of
// transforms recovers line boundaries before classification. The passes are
// heuristic and lossy; downstream stages tolerate minor mis-splits.

var (
	// "… 1.2.3 Dépose" — break before any dotted hierarchy code.
	codeBreakRe = regexp.MustCompile(`(\s)(\d+(?:\.\d+)+\s)`)

	// "… 1 Démolition" — break before a short top-level code glued to a
	// letter, which recovers level-1 headers.
	topLevelBreakRe = regexp.MustCompile(`(\s)(\d{1,2}\s+[A-Za-zÀ-ÿ])`)

	// Re-split positions inside an oversized piece: the start of a dotted
	// hierarchy code.
	codeStartRe = regexp.MustCompile(`\b\d+(?:\.\d+)+\s`)
)

// LogicalLines splits extracted text into an ordered, eagerly produced
// sequence of candidate lines.
func (p *Parser) LogicalLines(text string) []string {
	t := NormalizeSpaces(text)
	t = codeBreakRe.ReplaceAllString(t, "\n$2")
	t = topLevelBreakRe.ReplaceAllString(t, "\n$2")
	t = p.itemTailBreakRe.ReplaceAllString(t, "$1\n")

	var out []string
	for _, piece := range strings.Split(t, "\n") {
		piece = NormalizeSpaces(piece)
		if piece == "" {
			continue
		}
		out = append(out, p.resplitOversized(piece)...)
	}
	return out
}

// resplitOversized cuts a piece that is almost certainly still several glued
// lines (a whole page, typically) at every dotted-code start. If no cut
// applies the piece is kept as-is.
func (p *Parser) resplitOversized(piece string) []string {
	if utf8.RuneCountInString(piece) < p.rules.OversizeLineLen {
		return []string{piece}
	}

	locs := codeStartRe.FindAllStringIndex(piece, -1)
	var parts []string
	prev := 0
	for _, loc := range locs {
		if loc[0] == 0 {
			continue
		}
		part := NormalizeSpaces(piece[prev:loc[0]])
		if part != "" {
			parts = append(parts, part)
		}
		prev = loc[0]
	}
	if last := NormalizeSpaces(piece[prev:]); last != "" {
		parts = append(parts, last)
	}

	if len(parts) <= 1 {
		return []string{piece}
	}
	return parts
}
