package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Batipro56920/batipro/internal/devis"
	"github.com/Batipro56920/batipro/internal/extract"
	"github.com/Batipro56920/batipro/internal/pipeline"
)

// handleImport is the synchronous import path: extracted text in, outcome
// out. The text has usually been produced client-side by a PDF.js pass.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, err := s.orchestrator.Importer().ImportText(r.Context(), req)
	if err != nil {
		s.writeImportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleUpload accepts a single PDF/DOCX file and runs extraction plus the
// synchronous import path.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	chantierID := r.FormValue("chantier_id")
	devisID := r.FormValue("devis_id")
	if chantierID == "" || devisID == "" {
		jsonError(w, "chantier_id and devis_id are required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !extract.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	ex, err := extract.ForFile(filename, s.cfg.PDFFallbackPdftotext)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := ex.Extract(bytes.NewReader(data), filename)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			jsonError(w, "no usable text in document; a scanned PDF needs OCR first", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "extraction failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	out, err := s.orchestrator.Importer().ImportText(r.Context(), pipeline.Request{
		ChantierID: chantierID,
		DevisID:    devisID,
		Text:       text,
	})
	if err != nil {
		s.writeImportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// handleBatchImport queues several files for async processing. Each file
// becomes its own devis, identified by content hash unless the caller maps
// filenames to IDs.
func (s *Server) handleBatchImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	chantierID := r.FormValue("chantier_id")
	if chantierID == "" {
		jsonError(w, "chantier_id is required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !extract.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		devisID := r.FormValue("devis_id_" + filename)
		if devisID == "" {
			devisID = pipeline.ContentHashHex(data)[:16]
		}

		now := time.Now()
		job := &pipeline.Job{
			ID:         pipeline.ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", chantierID, filename, now.UnixNano())))[:20],
			ChantierID: chantierID,
			DevisID:    devisID,
			Status:     pipeline.StatusQueued,
			Phase:      "queued",
			Filename:   filename,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		job.SetFileData(data)

		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"devis_id": job.DevisID,
			"status":   job.Status,
			"poll_url": fmt.Sprintf("/api/devis/import/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// writeImportError maps importer errors onto status codes: caller mistakes
// are 4xx, storage trouble is 500.
func (s *Server) writeImportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pipeline.ErrBadRequest):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, devis.ErrTextTooShort):
		jsonError(w, "extracted text too short to parse", http.StatusUnprocessableEntity)
	default:
		s.log.Error("import failed", "error", err)
		jsonError(w, "import failed", http.StatusInternalServerError)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
