package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/store"
)

// ErrBadRequest marks request validation failures. Never retried.
var ErrBadRequest = errors.New("invalid import request")

// User-facing French messages, matching what the chantier UI displays.
const (
	NoteNoLines        = "Aucune ligne avec quantité + unité détectée."
	WarningTasksFailed = "Lignes importées mais la création des tâches a échoué."
)

// Request is an import submission: which devis to (re)import, which chantier
// receives the derived tasks, and the extracted text to parse.
type Request struct {
	ChantierID string `json:"chantier_id"`
	DevisID    string `json:"devis_id"`
	Text       string `json:"extracted_text"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.ChantierID) == "" {
		return fmt.Errorf("%w: chantier_id is required", ErrBadRequest)
	}
	if strings.TrimSpace(r.DevisID) == "" {
		return fmt.Errorf("%w: devis_id is required", ErrBadRequest)
	}
	return nil
}

// Outcome is the user-visible result of an import. Three shapes: lines
// inserted with tasks created; zero lines with a note; lines inserted with a
// warning when task creation failed after the lines were committed.
type Outcome struct {
	OK            bool            `json:"ok"`
	LinesInserted int             `json:"linesInserted"`
	TasksCreated  int             `json:"tasksCreated"`
	Structure     []devis.Section `json:"structure"`
	Note          string          `json:"note,omitempty"`
	Warning       string          `json:"warning,omitempty"`
}

// Importer runs the synchronous import path: parse, replace the stored
// lines, derive tasks. Shared by the HTTP handlers and the batch worker.
type Importer struct {
	parser *devis.Parser
	store  *store.Store
	log    *slog.Logger
}

func NewImporter(parser *devis.Parser, st *store.Store, log *slog.Logger) *Importer {
	return &Importer{parser: parser, store: st, log: log}
}

// ImportText parses the text and replaces the devis' stored lines. Every
// successful parse is a full replace, so a re-import that detects zero priced
// lines clears the previous import. Parse and storage failures return an
// error and leave the previous import in place. Task creation runs after the
// lines are committed; its failure downgrades to a warning, never to an
// error.
func (im *Importer) ImportText(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	res, err := im.parser.Parse(req.Text)
	if err != nil {
		return nil, err
	}

	structure := res.Structure
	if structure == nil {
		structure = []devis.Section{}
	}

	if res.Empty() {
		// The replace still runs: the parse succeeded, so whatever was
		// stored for this devis before no longer reflects its text.
		if _, err := im.store.ReplaceDevisLines(ctx, req.DevisID, res); err != nil {
			return nil, fmt.Errorf("replace lines: %w", err)
		}
		im.log.Info("no priced lines detected", "devis_id", req.DevisID)
		return &Outcome{OK: true, Structure: structure, Note: NoteNoLines}, nil
	}

	inserted, err := im.store.ReplaceDevisLines(ctx, req.DevisID, res)
	if err != nil {
		return nil, fmt.Errorf("replace lines: %w", err)
	}

	out := &Outcome{OK: true, LinesInserted: inserted, Structure: structure}

	tasks, err := im.store.CreateTasks(ctx, req.ChantierID, res.Lines)
	if err != nil {
		im.log.Error("task creation failed", "devis_id", req.DevisID, "chantier_id", req.ChantierID, "error", err)
		out.Warning = WarningTasksFailed
		return out, nil
	}
	out.TasksCreated = tasks

	im.log.Info("devis imported",
		"devis_id", req.DevisID,
		"chantier_id", req.ChantierID,
		"lines", inserted,
		"tasks", tasks)
	return out, nil
}
