package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/store"
)

func testImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	st, err := store.Open("sqlite::memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewImporter(devis.NewParser(devis.DefaultRules()), st, log), st
}

func TestImportText_FullPath(t *testing.T) {
	im, st := testImporter(t)
	ctx := context.Background()

	text := `1 Démolition
1.1 Dépose
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %
1.1.2 Dépose du bloc WC 1,00 u 157,50 € 10,00 %`

	out, err := im.ImportText(ctx, Request{ChantierID: "chantier-1", DevisID: "devis-1", Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Error("expected ok outcome")
	}
	if out.LinesInserted != 2 {
		t.Errorf("expected 2 inserted lines, got %d", out.LinesInserted)
	}
	if out.TasksCreated != 2 {
		t.Errorf("expected 2 created tasks, got %d", out.TasksCreated)
	}
	if len(out.Structure) != 2 {
		t.Errorf("expected 2 structure sections, got %+v", out.Structure)
	}
	if out.Note != "" || out.Warning != "" {
		t.Errorf("expected no note/warning, got %q %q", out.Note, out.Warning)
	}

	lines, err := st.ListDevisLines(ctx, "devis-1")
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 2 || lines[0].Designation != "Dépose de cloison existante" {
		t.Errorf("stored lines mismatch: %+v", lines)
	}
}

func TestImportText_ReimportReplaces(t *testing.T) {
	im, st := testImporter(t)
	ctx := context.Background()

	text := `1 Démolition
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %`
	req := Request{ChantierID: "chantier-1", DevisID: "devis-1", Text: text}

	if _, err := im.ImportText(ctx, req); err != nil {
		t.Fatalf("first import: %v", err)
	}
	out, err := im.ImportText(ctx, req)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if out.LinesInserted != 1 {
		t.Errorf("expected 1 inserted line, got %d", out.LinesInserted)
	}

	lines, err := st.ListDevisLines(ctx, "devis-1")
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("re-import must replace, not append: %+v", lines)
	}
}

func TestImportText_NoLinesYieldsNote(t *testing.T) {
	im, st := testImporter(t)
	ctx := context.Background()

	// Long enough to parse, but nothing priced in it.
	text := "Conditions générales de vente applicables au présent document"

	out, err := im.ImportText(ctx, Request{ChantierID: "chantier-1", DevisID: "devis-1", Text: text})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.OK {
		t.Error("expected ok outcome")
	}
	if out.LinesInserted != 0 || out.TasksCreated != 0 {
		t.Errorf("expected nothing inserted, got %+v", out)
	}
	if out.Note != NoteNoLines {
		t.Errorf("expected note %q, got %q", NoteNoLines, out.Note)
	}
	if out.Structure == nil {
		t.Error("structure must be an empty slice, not nil")
	}

	lines, err := st.ListDevisLines(ctx, "devis-1")
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no stored lines, got %+v", lines)
	}
}

func TestImportText_EmptyReimportClearsPriorLines(t *testing.T) {
	im, st := testImporter(t)
	ctx := context.Background()

	text := `1 Démolition
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %`
	if _, err := im.ImportText(ctx, Request{ChantierID: "chantier-1", DevisID: "devis-1", Text: text}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	// Second import of the same devis parses to zero priced lines. The
	// replace must still happen: the old rows no longer reflect the text.
	out, err := im.ImportText(ctx, Request{
		ChantierID: "chantier-1",
		DevisID:    "devis-1",
		Text:       "Conditions générales de vente applicables au présent document",
	})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if out.Note != NoteNoLines {
		t.Errorf("expected note %q, got %q", NoteNoLines, out.Note)
	}

	lines, err := st.ListDevisLines(ctx, "devis-1")
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("empty re-import must clear prior lines, got %+v", lines)
	}
	structure, err := st.DevisStructure(ctx, "devis-1")
	if err != nil {
		t.Fatalf("load structure: %v", err)
	}
	if len(structure) != 0 {
		t.Errorf("empty re-import must clear prior structure, got %+v", structure)
	}
}

func TestImportText_Validation(t *testing.T) {
	im, _ := testImporter(t)
	ctx := context.Background()

	cases := []Request{
		{DevisID: "devis-1", Text: "whatever text this is"},
		{ChantierID: "chantier-1", Text: "whatever text this is"},
		{ChantierID: "  ", DevisID: "devis-1", Text: "whatever text this is"},
	}
	for _, req := range cases {
		if _, err := im.ImportText(ctx, req); !errors.Is(err, ErrBadRequest) {
			t.Errorf("request %+v: expected ErrBadRequest, got %v", req, err)
		}
	}
}

func TestImportText_TooShort(t *testing.T) {
	im, _ := testImporter(t)
	_, err := im.ImportText(context.Background(), Request{ChantierID: "c", DevisID: "d", Text: "abc"})
	if !errors.Is(err, devis.ErrTextTooShort) {
		t.Errorf("expected ErrTextTooShort, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(fmt.Errorf("%w: chantier_id is required", ErrBadRequest)) {
		t.Error("validation errors must not be retried")
	}
	if IsRetryable(devis.ErrTextTooShort) {
		t.Error("parse errors must not be retried")
	}
	if !IsRetryable(errors.New("connection reset")) {
		t.Error("storage errors should be retried")
	}
}
