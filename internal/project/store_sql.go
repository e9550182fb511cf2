package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateProject(ctx context.Context, p Project) (Project, error) {
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE title=$1`, p.Title).Scan(&exists)
	if err == nil {
		return Project{}, ErrTitleTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Project{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO projects (id, title, description, team_id, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.Title, p.Description, p.TeamID, p.CreatedAt)
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *SQLStore) GetProject(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, description, team_id, created_at
		FROM projects WHERE id=$1`, id)
	return scanProject(row)
}

func (s *SQLStore) GetProjectByTitle(ctx context.Context, title string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, description, team_id, created_at
		FROM projects WHERE title=$1`, title)
	return scanProject(row)
}

func (s *SQLStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, team_id, created_at
		FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.TeamID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateTeam(ctx context.Context, t Team) (Team, error) {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	members, err := json.Marshal(t.MemberIDs)
	if err != nil {
		return Team{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO teams (id, name, member_ids_json, created_at)
		VALUES ($1,$2,$3,$4)`,
		t.ID, t.Name, string(members), t.CreatedAt)
	if err != nil {
		return Team{}, err
	}
	return t, nil
}

func (s *SQLStore) GetTeam(ctx context.Context, id string) (Team, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, member_ids_json, created_at FROM teams WHERE id=$1`, id)
	var t Team
	var members string
	if err := row.Scan(&t.ID, &t.Name, &members, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, err
	}
	if members != "" {
		if err := json.Unmarshal([]byte(members), &t.MemberIDs); err != nil {
			return Team{}, err
		}
	}
	return t, nil
}

func scanProject(row *sql.Row) (Project, error) {
	var p Project
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.TeamID, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}
