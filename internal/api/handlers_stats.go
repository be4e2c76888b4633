package api

import (
	"net/http"

	"github.com/lyricast/lyricast/internal/cleanup"
)

// handleCleanupStats reports AI-cleanup latency and fallback rate for
// the rolling window.
func (s *Server) handleCleanupStats(w http.ResponseWriter, r *http.Request) {
	if s.cleanupStats == nil {
		writeJSON(w, http.StatusOK, cleanup.StatsSnapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.cleanupStats.Snapshot())
}
