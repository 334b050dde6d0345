package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	analyst := mux.Vars(r)["analyst"]

	stats, err := s.stats.Get(r.Context(), analyst)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRefreshStats(w http.ResponseWriter, r *http.Request) {
	analyst := mux.Vars(r)["analyst"]

	stats, err := s.stats.Refresh(r.Context(), analyst)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count, _ := strconv.Atoi(q.Get("count"))

	rows, err := s.stats.Leaderboard(r.Context(), q.Get("order_by"), count)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": rows})
}
