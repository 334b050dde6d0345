package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

type tickersRequest struct {
	Tickers []string `json:"tickers"`
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	wl, err := s.watchlists.Get(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (s *Server) handleReplaceWatchlist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req tickersRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wl, err := s.watchlists.Replace(r.Context(), name, req.Tickers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (s *Server) handleDeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := s.watchlists.Delete(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTickers(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req tickersRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wl, err := s.watchlists.AddTickers(r.Context(), name, req.Tickers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}

func (s *Server) handleRemoveTickers(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req tickersRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wl, err := s.watchlists.RemoveTickers(r.Context(), name, req.Tickers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wl)
}
