package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campus-forge/ipd-portal/internal/evaluation"
	"github.com/campus-forge/ipd-portal/internal/project"
	"github.com/campus-forge/ipd-portal/internal/xlsximport"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses with structured JSON
// bodies, so callers get enough detail to act (the full offending-score
// list for ceiling violations, the field list for validation failures).
func writeError(w http.ResponseWriter, err error) {
	var vErr *evaluation.ValidationError
	var maxErr *evaluation.ScoreExceedsMaxError

	switch {
	case errors.Is(err, evaluation.ErrNotFound), errors.Is(err, project.ErrNotFound), errors.Is(err, project.ErrTeamNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, evaluation.ErrAlreadySubmitted):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, project.ErrTitleTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &maxErr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":     "score exceeds max",
			"offending": maxErr.Offending,
		})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": vErr.Fields,
		})
	case errors.Is(err, xlsximport.ErrInvalidFormat):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
