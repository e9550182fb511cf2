package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("project not found")
	ErrTeamNotFound = errors.New("team not found")
	ErrTitleTaken   = errors.New("a project with this title already exists")
)

type Team struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
}

type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TeamID      string `json:"team_id"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

func NewID() string { return uuid.NewString() }

type Store interface {
	CreateProject(ctx context.Context, p Project) (Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	// GetProjectByTitle resolves by exact title match; the import adapter
	// depends on this being exact, not fuzzy.
	GetProjectByTitle(ctx context.Context, title string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)

	CreateTeam(ctx context.Context, t Team) (Team, error)
	GetTeam(ctx context.Context, id string) (Team, error)
}
