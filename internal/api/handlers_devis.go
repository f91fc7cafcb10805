package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Batipro56920/batipro/internal/report"
	"github.com/Batipro56920/batipro/internal/store"
)

func (s *Server) handleListLignes(w http.ResponseWriter, r *http.Request) {
	devisID := chi.URLParam(r, "devisID")

	lines, err := s.store.ListDevisLines(r.Context(), devisID)
	if err != nil {
		s.log.Error("list lines failed", "devis_id", devisID, "error", err)
		jsonError(w, "failed to list lines", http.StatusInternalServerError)
		return
	}
	if lines == nil {
		lines = []store.StoredLine{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"devis_id": devisID,
		"count":    len(lines),
		"lignes":   lines,
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	devisID := chi.URLParam(r, "devisID")

	structure, err := s.store.DevisStructure(r.Context(), devisID)
	if err != nil {
		s.log.Error("load structure failed", "devis_id", devisID, "error", err)
		jsonError(w, "failed to load structure", http.StatusInternalServerError)
		return
	}
	lines, err := s.store.ListDevisLines(r.Context(), devisID)
	if err != nil {
		s.log.Error("list lines failed", "devis_id", devisID, "error", err)
		jsonError(w, "failed to list lines", http.StatusInternalServerError)
		return
	}

	md := report.OutlineMarkdown(devisID, structure, lines)

	switch r.URL.Query().Get("format") {
	case "", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
	case "html":
		html, err := report.RenderHTML(md)
		if err != nil {
			s.log.Error("outline render failed", "devis_id", devisID, "error", err)
			jsonError(w, "failed to render outline", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	default:
		jsonError(w, "format must be md or html", http.StatusBadRequest)
	}
}

func (s *Server) handleDeleteLignes(w http.ResponseWriter, r *http.Request) {
	devisID := chi.URLParam(r, "devisID")

	n, err := s.store.DeleteDevisLines(r.Context(), devisID)
	if err != nil {
		s.log.Error("delete lines failed", "devis_id", devisID, "error", err)
		jsonError(w, "failed to delete lines", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"devis_id": devisID,
		"deleted":  n,
	})
}
