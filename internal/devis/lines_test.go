package devis

import (
	"strings"
	"testing"
)

func TestLogicalLines_BreaksBeforeDottedCodes(t *testing.T) {
	p := NewParser(DefaultRules())
	got := p.LogicalLines("Garde corps 1.1 Dépose de cloison 2.1 Isolation des combles")
	want := []string{"Garde corps", "1.1 Dépose de cloison", "2.1 Isolation des combles"}
	assertLines(t, got, want)
}

func TestLogicalLines_BreaksBeforeTopLevelCode(t *testing.T) {
	p := NewParser(DefaultRules())
	got := p.LogicalLines("SARL Batimo 1 Démolition générale")
	want := []string{"SARL Batimo", "1 Démolition générale"}
	assertLines(t, got, want)
}

func TestLogicalLines_BreaksAfterPricedRowTail(t *testing.T) {
	p := NewParser(DefaultRules())
	got := p.LogicalLines("1.1 Dépose de cloison 69,50 m² 10,50 € 10,00 % Evacuation des gravats 3,00 u")
	want := []string{
		"1.1 Dépose de cloison 69,50 m² 10,50 € 10,00 %",
		"Evacuation des gravats 3,00 u",
	}
	assertLines(t, got, want)
}

func TestLogicalLines_RowTailWithoutPriceColumns(t *testing.T) {
	p := NewParser(DefaultRules())
	got := p.LogicalLines("Pose de porte 2,00 u Peinture des plafonds 45,00 m2")
	want := []string{
		"Pose de porte 2,00 u",
		"Peinture des plafonds 45,00 m2",
	}
	assertLines(t, got, want)
}

func TestLogicalLines_UnitNeverMatchesInsideWord(t *testing.T) {
	// "2,50 murs" must not be read as quantity 2,50 + unit "m".
	p := NewParser(DefaultRules())
	got := p.LogicalLines("Ragréage de 2,50 murs porteurs")
	want := []string{"Ragréage de 2,50 murs porteurs"}
	assertLines(t, got, want)
}

func TestLogicalLines_ResplitsOversizedPiece(t *testing.T) {
	p := NewParser(DefaultRules())

	// A single glued piece above the oversize threshold, where the dotted
	// code is not preceded by whitespace so the first transform misses it.
	piece := strings.Repeat("a", 150) + " 10,00 %1.2 " + strings.Repeat("b", 150)
	got := p.LogicalLines(piece)
	if len(got) != 2 {
		t.Fatalf("expected 2 pieces after re-split, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[1], "1.2 ") {
		t.Errorf("expected second piece to start at the code, got %q", got[1])
	}
}

func TestLogicalLines_OversizedWithoutCodesKeptWhole(t *testing.T) {
	p := NewParser(DefaultRules())
	piece := strings.Repeat("a", 230)
	got := p.LogicalLines(piece)
	if len(got) != 1 || got[0] != piece {
		t.Fatalf("expected oversized piece without codes kept as-is, got %d pieces", len(got))
	}
}

func TestLogicalLines_DropsEmptyPieces(t *testing.T) {
	p := NewParser(DefaultRules())
	got := p.LogicalLines("  \n\n 1 Demolition \n 2 Gros oeuvre ")
	want := []string{"1 Demolition", "2 Gros oeuvre"}
	assertLines(t, got, want)
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}
