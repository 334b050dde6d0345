package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/yourusername/stock-scout/internal/models"
)

// pageResponse is the list envelope every collection endpoint uses.
type pageResponse struct {
	Items    any `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// newPage echoes the pagination the service layer applied. The same
// clamping rules live in both places.
func newPage(items any, total, page, pageSize int) pageResponse {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageResponse{Items: items, Total: total, Page: page, PageSize: pageSize}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidStateTransition):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrTickerRequired),
		errors.Is(err, models.ErrInvalidID),
		errors.As(err, &validationErrs):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		writeErrorMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// pathID parses the {id} route variable as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.ErrInvalidID
	}
	return id, nil
}

// pagination reads page/page_size query parameters; the service layer
// clamps them.
func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
