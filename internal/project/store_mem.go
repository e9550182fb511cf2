package project

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	projects map[string]Project
	byTitle  map[string]string
	teams    map[string]Team
	order    []string
}

func NewInMemoryStore() Store {
	return &memoryStore{
		projects: map[string]Project{},
		byTitle:  map[string]string{},
		teams:    map[string]Team{},
	}
}

func (m *memoryStore) CreateProject(_ context.Context, p Project) (Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byTitle[p.Title]; ok {
		return Project{}, ErrTitleTaken
	}
	if p.ID == "" {
		p.ID = NewID()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}
	m.projects[p.ID] = p
	m.byTitle[p.Title] = p.ID
	m.order = append(m.order, p.ID)
	return p, nil
}

func (m *memoryStore) GetProject(_ context.Context, id string) (Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return Project{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryStore) GetProjectByTitle(_ context.Context, title string) (Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byTitle[title]
	if !ok {
		return Project{}, ErrNotFound
	}
	return m.projects[id], nil
}

func (m *memoryStore) ListProjects(_ context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Project, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.projects[id])
	}
	return out, nil
}

func (m *memoryStore) CreateTeam(_ context.Context, t Team) (Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	m.teams[t.ID] = t
	return t, nil
}

func (m *memoryStore) GetTeam(_ context.Context, id string) (Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.teams[id]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	return t, nil
}
