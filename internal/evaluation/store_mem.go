package evaluation

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu    sync.RWMutex
	evals map[string]Evaluation
	order []string
	now   func() time.Time
}

// NewInMemoryStore backs tests and single-node offline use.
func NewInMemoryStore() Store {
	return &memoryStore{
		evals: map[string]Evaluation{},
		now:   time.Now,
	}
}

func (m *memoryStore) PutEvaluation(_ context.Context, e Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.evals[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.evals[e.ID] = cloneEvaluation(e)
	return nil
}

func (m *memoryStore) GetEvaluation(_ context.Context, id string) (Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	return cloneEvaluation(e), nil
}

func (m *memoryStore) ListEvaluations(_ context.Context, opts ListOpts) ([]Evaluation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Evaluation{}
	skipped := 0
	for _, id := range m.order {
		e := m.evals[id]
		if opts.ProjectID != "" && e.ProjectID != opts.ProjectID {
			continue
		}
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		out = append(out, cloneEvaluation(e))
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) SubmitScores(_ context.Context, id string, role Role, entries []ScoreEntry, submittedBy string) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.evals[id]
	if !ok {
		return Evaluation{}, ErrNotFound
	}
	upd := cloneEvaluation(e)
	if err := upd.ApplyScores(role, entries, submittedBy, m.now()); err != nil {
		return Evaluation{}, err
	}
	m.evals[id] = upd
	return cloneEvaluation(upd), nil
}

// cloneEvaluation copies the aggregate deeply enough that callers cannot
// mutate stored state through returned values.
func cloneEvaluation(e Evaluation) Evaluation {
	out := e
	out.RubricItems = make([]RubricItem, len(e.RubricItems))
	copy(out.RubricItems, e.RubricItems)
	for i := range out.RubricItems {
		out.RubricItems[i].Faculty = cloneRoleScore(out.RubricItems[i].Faculty)
		out.RubricItems[i].Reviewer = cloneRoleScore(out.RubricItems[i].Reviewer)
	}
	if e.ExcelData != nil {
		out.ExcelData = make([]map[string]string, len(e.ExcelData))
		for i, row := range e.ExcelData {
			cp := make(map[string]string, len(row))
			for k, v := range row {
				cp[k] = v
			}
			out.ExcelData[i] = cp
		}
	}
	return out
}

func cloneRoleScore(s RoleScore) RoleScore {
	if s.Value != nil {
		v := *s.Value
		s.Value = &v
	}
	if s.SubmittedAt != nil {
		at := *s.SubmittedAt
		s.SubmittedAt = &at
	}
	return s
}
