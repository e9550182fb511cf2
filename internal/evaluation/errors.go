package evaluation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("evaluation not found")
	ErrAlreadySubmitted = errors.New("scores already submitted for this role")
)

// FieldError ties a validation failure to the field that caused it.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports missing or malformed fields on creation or
// submission. The full field list is surfaced so callers can fix
// everything in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OffendingScore is one submitted value that exceeds its item's ceiling.
type OffendingScore struct {
	Criterion      string  `json:"criterion"`
	MaxScore       float64 `json:"max_score"`
	SubmittedScore float64 `json:"submitted_score"`
}

// ScoreExceedsMaxError rejects a submission batch wholesale and lists
// every offending entry, not just the first.
type ScoreExceedsMaxError struct {
	Offending []OffendingScore
}

func (e *ScoreExceedsMaxError) Error() string {
	parts := make([]string, 0, len(e.Offending))
	for _, o := range e.Offending {
		parts = append(parts, fmt.Sprintf("%s: %g > max %g", o.Criterion, o.SubmittedScore, o.MaxScore))
	}
	return "score exceeds max: " + strings.Join(parts, "; ")
}
