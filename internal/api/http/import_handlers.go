package http

import (
	"net/http"

	"github.com/campus-forge/ipd-portal/internal/audit"
	auth "github.com/campus-forge/ipd-portal/internal/auth/middleware"
	"github.com/campus-forge/ipd-portal/internal/xlsximport"
)

// POST /evaluations/import
// multipart form: file=<xlsx>, evaluation_type=milestone|final.
// Responds with per-project results; a project name that cannot be
// resolved fails alone, the rest of the batch still imports.
func ImportEvaluationsHandler(im *xlsximport.Importer, log audit.Recorder, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
			return
		}
		defer f.Close()
		evalType := r.FormValue("evaluation_type")

		results, err := im.Import(r.Context(), f, evalType)
		if err != nil {
			writeError(w, err)
			return
		}

		actor := auth.SubjectFromContext(r.Context())
		for _, res := range results {
			if res.Success {
				_ = log.Append(r.Context(), audit.Event{
					Type:  audit.TypeEvaluationImported,
					Key:   res.EvaluationID,
					Actor: actor,
				})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
	}
}
