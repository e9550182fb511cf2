// Package audit keeps an append-only trail of evaluation workflow
// actions: creation, import, and each role's score submission.
package audit

import (
	"context"
	"database/sql"
	"time"
)

// Event types recorded by the portal.
const (
	TypeEvaluationCreated  = "EvaluationCreated"
	TypeEvaluationImported = "EvaluationImported"
	TypeFacultySubmitted   = "FacultyScoresSubmitted"
	TypeReviewerSubmitted  = "ReviewerScoresSubmitted"
)

type Event struct {
	Offset    int64  `json:"offset"`
	Type      string `json:"type"`
	Key       string `json:"key"`   // natural key: evaluation ID
	Actor     string `json:"actor"` // authenticated subject, if any
	DataJSON  string `json:"data,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Recorder interface {
	Append(ctx context.Context, e Event) error
	ListByKey(ctx context.Context, key string) ([]Event, error)
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, actor, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.Type, e.Key, e.Actor, e.DataJSON, time.Now().Unix())
	return err
}

func (r *EventRepo) ListByKey(ctx context.Context, key string) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", typ, key, actor, data, created_at
		 FROM event_log WHERE key=$1 ORDER BY "offset"`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.Actor, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
