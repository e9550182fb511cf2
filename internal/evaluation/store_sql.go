package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore persists evaluations as single rows with rubric items and raw
// excel rows serialized to JSON columns. There is no optimistic locking:
// a submission is one read-modify-write, last writer wins (accepted for
// this workload).
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) PutEvaluation(ctx context.Context, e Evaluation) error {
	itemsJSON, err := json.Marshal(e.RubricItems)
	if err != nil {
		return err
	}
	excelJSON := "[]"
	if e.ExcelData != nil {
		b, err := json.Marshal(e.ExcelData)
		if err != nil {
			return err
		}
		excelJSON = string(b)
	}
	created := e.CreatedAt
	if created == 0 {
		created = s.now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO evaluations
		(id, project_id, team_id, evaluation_type, due_date, rubric_items_json,
		 faculty_submitted, reviewer_submitted, status, excel_data_json, has_prefilled_scores, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
		 rubric_items_json=EXCLUDED.rubric_items_json,
		 faculty_submitted=EXCLUDED.faculty_submitted,
		 reviewer_submitted=EXCLUDED.reviewer_submitted,
		 status=EXCLUDED.status`,
		e.ID, e.ProjectID, e.TeamID, e.Type, e.DueDate.Unix(), string(itemsJSON),
		e.FacultySubmitted, e.ReviewerSubmitted, e.Status, excelJSON, e.HasPrefilledScores, created)
	return err
}

func (s *SQLStore) GetEvaluation(ctx context.Context, id string) (Evaluation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, project_id, team_id, evaluation_type, due_date,
		rubric_items_json, faculty_submitted, reviewer_submitted, status,
		excel_data_json, has_prefilled_scores, created_at
		FROM evaluations WHERE id=$1`, id)
	return scanEvaluation(row)
}

func (s *SQLStore) ListEvaluations(ctx context.Context, opts ListOpts) ([]Evaluation, error) {
	q := `SELECT id, project_id, team_id, evaluation_type, due_date,
		rubric_items_json, faculty_submitted, reviewer_submitted, status,
		excel_data_json, has_prefilled_scores, created_at
		FROM evaluations WHERE 1=1`
	args := []any{}
	if opts.ProjectID != "" {
		args = append(args, opts.ProjectID)
		q += fmt.Sprintf(" AND project_id=$%d", len(args))
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		q += fmt.Sprintf(" AND status=$%d", len(args))
	}
	q += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) SubmitScores(ctx context.Context, id string, role Role, entries []ScoreEntry, submittedBy string) (Evaluation, error) {
	e, err := s.GetEvaluation(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if err := e.ApplyScores(role, entries, submittedBy, s.now()); err != nil {
		return Evaluation{}, err
	}
	itemsJSON, err := json.Marshal(e.RubricItems)
	if err != nil {
		return Evaluation{}, err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE evaluations
		SET rubric_items_json=$1, faculty_submitted=$2, reviewer_submitted=$3, status=$4
		WHERE id=$5`,
		string(itemsJSON), e.FacultySubmitted, e.ReviewerSubmitted, e.Status, id)
	if err != nil {
		return Evaluation{}, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var e Evaluation
	var due int64
	var itemsJSON, excelJSON string
	err := row.Scan(&e.ID, &e.ProjectID, &e.TeamID, &e.Type, &due,
		&itemsJSON, &e.FacultySubmitted, &e.ReviewerSubmitted, &e.Status,
		&excelJSON, &e.HasPrefilledScores, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Evaluation{}, ErrNotFound
		}
		return Evaluation{}, err
	}
	e.DueDate = time.Unix(due, 0).UTC()
	if err := json.Unmarshal([]byte(itemsJSON), &e.RubricItems); err != nil {
		return Evaluation{}, err
	}
	if excelJSON != "" && excelJSON != "[]" {
		if err := json.Unmarshal([]byte(excelJSON), &e.ExcelData); err != nil {
			return Evaluation{}, err
		}
	}
	return e, nil
}
