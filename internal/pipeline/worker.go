package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Batipro56920/batipro/internal/extract"
)

// Worker processes a single queued devis import.
type Worker struct {
	importer          *Importer
	log               *slog.Logger
	fallbackPdftotext bool
	backoff           func(attempt int) time.Duration
}

func NewWorker(importer *Importer, log *slog.Logger, fallbackPdftotext bool) *Worker {
	return &Worker{
		importer:          importer,
		log:               log,
		fallbackPdftotext: fallbackPdftotext,
		backoff:           Backoff,
	}
}

// Process runs extraction and import for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "devis_id", job.DevisID, "chantier_id", job.ChantierID)

	job.SetStatus(StatusExtracting, "extracting text")
	ex, err := extract.ForFile(job.Filename, w.fallbackPdftotext)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	text, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}

	job.SetStatus(StatusImporting, "parsing and storing")
	req := Request{
		ChantierID: job.ChantierID,
		DevisID:    job.DevisID,
		Text:       text,
	}

	var out *Outcome
	var lastErr error
	for attempt := range MaxRetries {
		out, lastErr = w.importer.ImportText(ctx, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable import error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "importing")
			return
		}
	}
	if lastErr != nil {
		log.Error("import failed", "error", lastErr)
		job.AddError(lastErr.Error())
		job.SetStatus(StatusFailed, "importing")
		return
	}

	job.SetOutcome(out)
	job.SetStatus(StatusCompleted, "done")
	log.Info("batch import complete", "lines", out.LinesInserted, "tasks", out.TasksCreated)
}
