package evaluation

import (
	"time"

	"github.com/google/uuid"
)

// Evaluation types.
const (
	TypeMilestone  = "milestone"
	TypeFinal      = "final"
	TypeExcelBased = "excel-based"
)

// Derived status values. Status only moves forward:
// pending -> faculty-evaluated|reviewer-evaluated -> completed.
const (
	StatusPending           = "pending"
	StatusFacultyEvaluated  = "faculty-evaluated"
	StatusReviewerEvaluated = "reviewer-evaluated"
	StatusCompleted         = "completed"
)

// Role identifies one of the two independent grading tracks.
type Role string

const (
	RoleFaculty  Role = "faculty"
	RoleReviewer Role = "reviewer"
)

func ValidType(t string) bool {
	return t == TypeMilestone || t == TypeFinal || t == TypeExcelBased
}

func ValidRole(r Role) bool {
	return r == RoleFaculty || r == RoleReviewer
}

// RoleScore is one role's score slot on a rubric item. A nil Value means
// not scored yet. Once Locked is set the value is final for that role.
type RoleScore struct {
	Value       *float64   `json:"value"`
	SubmittedBy string     `json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	Locked      bool       `json:"locked"`
}

// RubricItem is a single gradeable criterion. Each role's ceiling equals
// the full MaxScore, so the combined total can reach 2*MaxScore.
type RubricItem struct {
	ID          string    `json:"id"`
	Criterion   string    `json:"criterion"`
	Description string    `json:"description,omitempty"`
	MaxScore    float64   `json:"max_score"`
	Faculty     RoleScore `json:"faculty_score"`
	Reviewer    RoleScore `json:"reviewer_score"`
}

// ItemSpec is the creation-time shape of a rubric item.
type ItemSpec struct {
	Criterion   string  `json:"criterion"`
	Description string  `json:"description,omitempty"`
	MaxScore    float64 `json:"max_score"`
}

type Evaluation struct {
	ID                string       `json:"id"`
	ProjectID         string       `json:"project_id"`
	TeamID            string       `json:"team_id"`
	Type              string       `json:"evaluation_type"`
	DueDate           time.Time    `json:"due_date"`
	RubricItems       []RubricItem `json:"rubric_items"` // insertion order = display order
	FacultySubmitted  bool         `json:"faculty_submitted"`
	ReviewerSubmitted bool         `json:"reviewer_submitted"`
	Status            string       `json:"status"`

	// Bulk-import artifacts.
	ExcelData          []map[string]string `json:"excel_data,omitempty"`
	HasPrefilledScores bool                `json:"has_prefilled_scores"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// New builds a pending Evaluation. Project, team and at least one rubric
// item are required; criteria must be unique within the evaluation.
func New(projectID, teamID, evalType string, dueDate time.Time, specs []ItemSpec) (Evaluation, error) {
	var fields []FieldError
	if projectID == "" {
		fields = append(fields, FieldError{Field: "project_id", Error: "required"})
	}
	if teamID == "" {
		fields = append(fields, FieldError{Field: "team_id", Error: "required"})
	}
	if !ValidType(evalType) {
		fields = append(fields, FieldError{Field: "evaluation_type", Error: "must be milestone, final or excel-based"})
	}
	if len(specs) == 0 {
		fields = append(fields, FieldError{Field: "rubric_items", Error: "at least one rubric item required"})
	}
	seen := map[string]bool{}
	for _, s := range specs {
		if s.Criterion == "" {
			fields = append(fields, FieldError{Field: "criterion", Error: "required"})
			continue
		}
		if s.MaxScore <= 0 {
			fields = append(fields, FieldError{Field: s.Criterion, Error: "max_score must be positive"})
		}
		if seen[s.Criterion] {
			fields = append(fields, FieldError{Field: s.Criterion, Error: "duplicate criterion"})
		}
		seen[s.Criterion] = true
	}
	if len(fields) > 0 {
		return Evaluation{}, &ValidationError{Fields: fields}
	}

	items := make([]RubricItem, 0, len(specs))
	for _, s := range specs {
		items = append(items, RubricItem{
			ID:          uuid.NewString(),
			Criterion:   s.Criterion,
			Description: s.Description,
			MaxScore:    s.MaxScore,
		})
	}
	return Evaluation{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		TeamID:      teamID,
		Type:        evalType,
		DueDate:     dueDate,
		RubricItems: items,
		Status:      StatusPending,
		CreatedAt:   time.Now().Unix(),
	}, nil
}

// Submitted reports whether the given role has already locked in its scores.
func (e *Evaluation) Submitted(role Role) bool {
	if role == RoleFaculty {
		return e.FacultySubmitted
	}
	return e.ReviewerSubmitted
}

func (it *RubricItem) slot(role Role) *RoleScore {
	if role == RoleFaculty {
		return &it.Faculty
	}
	return &it.Reviewer
}

// TotalFor sums a role's scores across all rubric items, counting
// unscored items as zero.
func (e *Evaluation) TotalFor(role Role) float64 {
	total := 0.0
	for i := range e.RubricItems {
		if v := e.RubricItems[i].slot(role).Value; v != nil {
			total += *v
		}
	}
	return total
}

// MaxTotal is the per-role ceiling: the sum of all items' max scores.
func (e *Evaluation) MaxTotal() float64 {
	total := 0.0
	for i := range e.RubricItems {
		total += e.RubricItems[i].MaxScore
	}
	return total
}

// RecomputeStatus derives Status from the two submission flags.
func (e *Evaluation) RecomputeStatus() {
	switch {
	case e.FacultySubmitted && e.ReviewerSubmitted:
		e.Status = StatusCompleted
	case e.FacultySubmitted:
		e.Status = StatusFacultyEvaluated
	case e.ReviewerSubmitted:
		e.Status = StatusReviewerEvaluated
	default:
		e.Status = StatusPending
	}
}
