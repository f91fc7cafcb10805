package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testJob(filename, content string) *Job {
	now := time.Now()
	job := &Job{
		ID:         "job-1",
		ChantierID: "chantier-1",
		DevisID:    "devis-1",
		Status:     StatusQueued,
		Phase:      "queued",
		Filename:   filename,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	job.SetFileData([]byte(content))
	return job
}

func TestWorker_ProcessTextJob(t *testing.T) {
	im, st := testImporter(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(im, log, false)

	job := testJob("devis.txt", `1 Démolition
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %`)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed job, got %s (%s): %v", snap.Status, snap.Phase, snap.Errors)
	}
	if snap.Outcome == nil || snap.Outcome.LinesInserted != 1 || snap.Outcome.TasksCreated != 1 {
		t.Errorf("unexpected outcome %+v", snap.Outcome)
	}

	lines, err := st.ListDevisLines(context.Background(), "devis-1")
	if err != nil {
		t.Fatalf("list lines: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("expected 1 stored line, got %+v", lines)
	}
}

func TestWorker_UnsupportedFormatFailsJob(t *testing.T) {
	im, _ := testImporter(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(im, log, false)

	job := testJob("devis.exe", "whatever")
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed job, got %s", snap.Status)
	}
	if snap.Phase != "extracting" {
		t.Errorf("expected failure during extraction, got phase %q", snap.Phase)
	}
	if len(snap.Errors) == 0 {
		t.Error("expected recorded error")
	}
}

func TestWorker_RetriesTransientStorageError(t *testing.T) {
	im, st := testImporter(t)
	st.Close() // every storage call now fails, and the failure is retryable

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	w := NewWorker(im, log, false)
	w.backoff = func(int) time.Duration { return time.Millisecond }

	job := testJob("devis.txt", `1 Démolition
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %`)
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed job, got %s", snap.Status)
	}
	if snap.Phase != "importing" {
		t.Errorf("expected failure during import, got phase %q", snap.Phase)
	}
	if len(snap.Errors) == 0 || !strings.Contains(snap.Errors[0], "replace lines") {
		t.Errorf("expected storage error recorded, got %v", snap.Errors)
	}
	if got := strings.Count(buf.String(), "retryable import error"); got != MaxRetries {
		t.Errorf("expected %d retry attempts logged, got %d:\n%s", MaxRetries, got, buf.String())
	}
}

func TestWorker_CancelledDuringBackoff(t *testing.T) {
	im, st := testImporter(t)
	st.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWorker(im, log, false)
	w.backoff = func(int) time.Duration { return time.Hour }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := testJob("devis.txt", `1 Démolition
1.1.1 Dépose de cloison existante 69,50 m² 10,50 € 10,00 %`)
	done := make(chan struct{})
	go func() {
		w.Process(ctx, job)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed job, got %s", snap.Status)
	}
}
