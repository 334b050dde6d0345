package api

import (
	"net/http"
	"strconv"

	"github.com/yourusername/stock-scout/internal/models"
	"github.com/yourusername/stock-scout/internal/repository"
)

// memoFilterFromQuery builds the repository filter from query
// parameters.
func memoFilterFromQuery(r *http.Request) repository.MemoFilter {
	q := r.URL.Query()
	filter := repository.MemoFilter{
		Status:  models.MemoStatus(q.Get("status")),
		Analyst: q.Get("analyst"),
		Signal:  models.Signal(q.Get("signal")),
		Ticker:  q.Get("ticker"),
	}
	if raw := q.Get("min_conviction"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinConviction = &v
		}
	}
	return filter
}

func (s *Server) handleListMemos(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	memos, total, err := s.inbox.List(r.Context(), memoFilterFromQuery(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(memos, total, page, pageSize))
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	memos, total, err := s.inbox.ListPending(r.Context(), memoFilterFromQuery(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(memos, total, page, pageSize))
}

func (s *Server) handleGetMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	memo, err := s.inbox.GetMemo(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memo)
}

type approveRequest struct {
	EntryPrice *float64 `json:"entry_price,omitempty"`
}

func (s *Server) handleApproveMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req approveRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	investment, err := s.inbox.Approve(r.Context(), id, req.EntryPrice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, investment)
}

func (s *Server) handleRejectMemo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.inbox.Reject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
