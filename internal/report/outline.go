package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/store"
)

// OutlineMarkdown renders the stored structure of a devis as a Markdown
// outline: one section per lot with its line count, sous-lots nested
// underneath, and a trailing bucket for lines outside any lot.
func OutlineMarkdown(devisID string, structure []devis.Section, lines []store.StoredLine) string {
	counts := make(map[string]int)
	unassigned := 0
	for _, l := range lines {
		if l.CorpsEtat == "" {
			unassigned++
			continue
		}
		counts[l.CorpsEtat]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Devis %s\n", devisID)

	for _, sec := range structure {
		if sec.Level == 1 {
			fmt.Fprintf(&b, "\n## %s %s (%s)\n", sec.Code, sec.Title, pluralLignes(counts[sec.Title]))
			continue
		}
		indent := strings.Repeat("  ", sec.Level-2)
		fmt.Fprintf(&b, "%s- %s %s\n", indent, sec.Code, sec.Title)
	}

	if unassigned > 0 {
		fmt.Fprintf(&b, "\n## Hors lots (%s)\n", pluralLignes(unassigned))
	}
	if len(structure) == 0 && unassigned == 0 {
		b.WriteString("\nAucune structure détectée.\n")
	}
	return b.String()
}

// RenderHTML converts a Markdown outline to HTML for the admin preview.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render outline: %w", err)
	}
	return buf.String(), nil
}

func pluralLignes(n int) string {
	if n == 1 {
		return "1 ligne"
	}
	return fmt.Sprintf("%d lignes", n)
}
