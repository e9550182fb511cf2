package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campus-forge/ipd-portal/internal/audit"
	auth "github.com/campus-forge/ipd-portal/internal/auth/middleware"
	"github.com/campus-forge/ipd-portal/internal/evaluation"
	"github.com/campus-forge/ipd-portal/internal/project"
	"github.com/campus-forge/ipd-portal/internal/rbac"
)

var validate = validator.New()

type rubricItemReq struct {
	Criterion   string  `json:"criterion" validate:"required"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"max_score" validate:"required,gt=0"`
}

type createEvaluationReq struct {
	ProjectID   string          `json:"project_id" validate:"required"`
	Type        string          `json:"evaluation_type" validate:"required,oneof=milestone final excel-based"`
	DueDate     string          `json:"due_date,omitempty"` // RFC3339; defaults to +14d
	RubricItems []rubricItemReq `json:"rubric_items" validate:"required,min=1,dive"`
}

// POST /evaluations
func CreateEvaluationHandler(store evaluation.Store, projects project.Store, log audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEvaluationReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, validationError(err))
			return
		}

		proj, err := projects.GetProject(r.Context(), req.ProjectID)
		if err != nil {
			writeError(w, err)
			return
		}

		due := time.Now().Add(14 * 24 * time.Hour)
		if req.DueDate != "" {
			d, err := time.Parse(time.RFC3339, req.DueDate)
			if err != nil {
				writeError(w, &evaluation.ValidationError{Fields: []evaluation.FieldError{
					{Field: "due_date", Error: "must be RFC3339"},
				}})
				return
			}
			due = d
		}

		specs := make([]evaluation.ItemSpec, 0, len(req.RubricItems))
		for _, it := range req.RubricItems {
			specs = append(specs, evaluation.ItemSpec{
				Criterion:   it.Criterion,
				Description: it.Description,
				MaxScore:    it.MaxScore,
			})
		}
		ev, err := evaluation.New(proj.ID, proj.TeamID, req.Type, due, specs)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := store.PutEvaluation(r.Context(), ev); err != nil {
			writeError(w, err)
			return
		}
		_ = log.Append(r.Context(), audit.Event{
			Type:  audit.TypeEvaluationCreated,
			Key:   ev.ID,
			Actor: auth.SubjectFromContext(r.Context()),
		})
		writeJSON(w, http.StatusCreated, ev)
	}
}

// GET /evaluations/{evaluationID}
func GetEvaluationHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		ev, err := store.GetEvaluation(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evaluationView(ev))
	}
}

// GET /evaluations?project_id=&status=&limit=&offset=
func ListEvaluationsHandler(store evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := evaluation.ListOpts{
			ProjectID: q.Get("project_id"),
			Status:    q.Get("status"),
		}
		if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
			opts.Limit = n
		}
		if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
			opts.Offset = n
		}
		evs, err := store.ListEvaluations(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evs)
	}
}

type submitScoresReq struct {
	Scores []evaluation.ScoreEntry `json:"scores"`
}

// POST /evaluations/{evaluationID}/scores
// The grading track comes from the caller's role: faculty submit the
// faculty track, reviewers the reviewer track. Each track locks after
// its first successful submission.
func SubmitScoresHandler(store evaluation.Store, log audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		var req submitScoresReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if len(req.Scores) == 0 {
			writeError(w, &evaluation.ValidationError{Fields: []evaluation.FieldError{
				{Field: "scores", Error: "at least one score required"},
			}})
			return
		}

		var role evaluation.Role
		switch rbac.RoleFromContext(r.Context()) {
		case "faculty", "admin":
			role = evaluation.RoleFaculty
		case "reviewer":
			role = evaluation.RoleReviewer
		default:
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "role cannot submit scores"})
			return
		}

		sub := auth.SubjectFromContext(r.Context())
		ev, err := store.SubmitScores(r.Context(), id, role, req.Scores, sub)
		if err != nil {
			writeError(w, err)
			return
		}

		typ := audit.TypeFacultySubmitted
		if role == evaluation.RoleReviewer {
			typ = audit.TypeReviewerSubmitted
		}
		_ = log.Append(r.Context(), audit.Event{Type: typ, Key: ev.ID, Actor: sub})

		writeJSON(w, http.StatusOK, evaluationView(ev))
	}
}

// GET /evaluations/{evaluationID}/events
func EvaluationEventsHandler(log audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "evaluationID")
		events, err := log.ListByKey(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// evaluationWithTotals decorates the aggregate with computed totals so
// clients can render rubric tables without re-summing.
type evaluationWithTotals struct {
	evaluation.Evaluation
	FacultyTotal  float64 `json:"faculty_total"`
	ReviewerTotal float64 `json:"reviewer_total"`
	MaxTotal      float64 `json:"max_total"`
}

func evaluationView(ev evaluation.Evaluation) evaluationWithTotals {
	return evaluationWithTotals{
		Evaluation:    ev,
		FacultyTotal:  ev.TotalFor(evaluation.RoleFaculty),
		ReviewerTotal: ev.TotalFor(evaluation.RoleReviewer),
		MaxTotal:      ev.MaxTotal(),
	}
}

// validationError flattens validator.ValidationErrors into the domain's
// field-error shape.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &evaluation.ValidationError{Fields: []evaluation.FieldError{
			{Field: "request", Error: err.Error()},
		}}
	}
	fields := make([]evaluation.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, evaluation.FieldError{
			Field: fe.Field(),
			Error: "failed on " + fe.Tag(),
		})
	}
	return &evaluation.ValidationError{Fields: fields}
}
