package evaluation

import "time"

// ScoreEntry is one submitted score, addressed by rubric item ID.
type ScoreEntry struct {
	ItemID   string  `json:"item_id"`
	Value    float64 `json:"value"`
	Comments string  `json:"comments,omitempty"`
}

// ApplyScores applies one role's batch of scores, exactly once.
//
// Validation is all-or-nothing: the evaluation is untouched unless every
// entry passes. Checks run in this order: one-shot flag, unknown or
// already-locked items, then score ceilings (every offending entry is
// reported, not just the first). On success each targeted slot is set and
// locked, the role's submitted flag flips, and Status is recomputed.
func (e *Evaluation) ApplyScores(role Role, entries []ScoreEntry, submittedBy string, now time.Time) error {
	if e.Submitted(role) {
		return ErrAlreadySubmitted
	}

	byID := make(map[string]int, len(e.RubricItems))
	for i := range e.RubricItems {
		byID[e.RubricItems[i].ID] = i
	}

	var fields []FieldError
	for _, en := range entries {
		i, ok := byID[en.ItemID]
		if !ok {
			fields = append(fields, FieldError{Field: en.ItemID, Error: "unknown rubric item"})
			continue
		}
		if e.RubricItems[i].slot(role).Locked {
			fields = append(fields, FieldError{Field: e.RubricItems[i].Criterion, Error: "score is locked"})
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	var offending []OffendingScore
	for _, en := range entries {
		it := &e.RubricItems[byID[en.ItemID]]
		if en.Value > it.MaxScore {
			offending = append(offending, OffendingScore{
				Criterion:      it.Criterion,
				MaxScore:       it.MaxScore,
				SubmittedScore: en.Value,
			})
		}
	}
	if len(offending) > 0 {
		return &ScoreExceedsMaxError{Offending: offending}
	}

	for _, en := range entries {
		it := &e.RubricItems[byID[en.ItemID]]
		v := en.Value
		at := now
		*it.slot(role) = RoleScore{
			Value:       &v,
			SubmittedBy: submittedBy,
			SubmittedAt: &at,
			Comments:    en.Comments,
			Locked:      true,
		}
	}
	if role == RoleFaculty {
		e.FacultySubmitted = true
	} else {
		e.ReviewerSubmitted = true
	}
	e.RecomputeStatus()
	return nil
}
