package api

import (
	"net/http"
	"time"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.InvestmentFilter{
		Status:  models.InvestmentStatus(q.Get("status")),
		Analyst: q.Get("analyst"),
		Ticker:  q.Get("ticker"),
	}

	page, pageSize := pagination(r)
	investments, total, err := s.investments.List(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(investments, total, page, pageSize))
}

func (s *Server) handleGetInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	investment, err := s.investments.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, investment)
}

type closeRequest struct {
	ExitPrice float64    `json:"exit_price"`
	ExitDate  *time.Time `json:"exit_date,omitempty"`
}

func (s *Server) handleCloseInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req closeRequest
	if err := decodeBody(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ExitPrice <= 0 {
		writeErrorMessage(w, http.StatusBadRequest, "exit_price must be positive")
		return
	}

	var exitDate time.Time
	if req.ExitDate != nil {
		exitDate = req.ExitDate.UTC()
	}

	closed, err := s.investments.Close(r.Context(), id, req.ExitPrice, exitDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closed)
}

func (s *Server) handleCurrentReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ret, err := s.investments.CurrentReturn(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"return_pct": ret})
}
