package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
)

type errorResponse struct {
	Error string `json:"error"`
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &badRequestError{msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

// writeError maps the error taxonomy onto HTTP statuses: rejected requests
// are 400, unknown projects and items are 404, everything else is a 500.
func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	var (
		badRequest *badRequestError
		duplicate  *project.DuplicateItemError
		mismatch   *project.RegionMismatchError
		noResource *project.ResourceNotFoundError
		pre        *project.PreconditionError
		transition *project.InvalidTransitionError
		notFound   *project.NotFoundError
	)

	switch {
	case errors.As(err, &badRequest),
		errors.As(err, &duplicate),
		errors.As(err, &mismatch),
		errors.As(err, &noResource),
		errors.As(err, &pre),
		errors.As(err, &transition):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		log.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
