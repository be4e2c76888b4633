package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

type exportDeckRequest struct {
	Title  string   `json:"title"`
	JobIDs []string `json:"job_ids"`
}

// handleExportDeck builds one presentation from the composed slides of
// previously completed jobs.
func (s *Server) handleExportDeck(w http.ResponseWriter, r *http.Request) {
	var req exportDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.JobIDs) == 0 {
		jsonError(w, "job_ids is required", http.StatusBadRequest)
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Worship Slides " + time.Now().Format("2006-01-02")
	}

	url, err := s.orchestrator.ExportDeck(r.Context(), title, req.JobIDs)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "not completed") {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, "export failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title": title,
		"url":   url,
	})
}
