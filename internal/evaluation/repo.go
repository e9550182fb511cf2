package evaluation

import "context"

// ListOpts filters evaluation listings for dashboards.
type ListOpts struct {
	ProjectID string
	Status    string
	Limit     int
	Offset    int
}

type Store interface {
	PutEvaluation(ctx context.Context, e Evaluation) error
	GetEvaluation(ctx context.Context, id string) (Evaluation, error)
	ListEvaluations(ctx context.Context, opts ListOpts) ([]Evaluation, error)

	// SubmitScores runs the one-shot submission for a role as a single
	// read-modify-write against the stored evaluation.
	SubmitScores(ctx context.Context, id string, role Role, entries []ScoreEntry, submittedBy string) (Evaluation, error)
}
