// Package xlsximport turns an uploaded spreadsheet into evaluation
// records with pre-seeded, locked faculty scores.
package xlsximport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campus-forge/ipd-portal/internal/evaluation"
	"github.com/campus-forge/ipd-portal/internal/project"
)

// ErrInvalidFormat rejects unparseable workbooks and workbooks with no
// data rows.
var ErrInvalidFormat = errors.New("invalid spreadsheet format")

// projectNameColumn keys the row grouping. Rows without it are dropped.
const projectNameColumn = "ProjectName"

const importedComment = "Imported from Excel"

// dueDateOffset is the default grading window for imported evaluations.
const dueDateOffset = 14 * 24 * time.Hour

// ProjectLookup is the slice of the project store the importer needs.
type ProjectLookup interface {
	GetProjectByTitle(ctx context.Context, title string) (project.Project, error)
}

// ProjectResult reports the outcome for one project group. Failures are
// isolated: a bad project name never aborts the batch.
type ProjectResult struct {
	ProjectName        string `json:"project_name"`
	Success            bool   `json:"success"`
	EvaluationID       string `json:"evaluation_id,omitempty"`
	HasPrefilledScores bool   `json:"has_prefilled_scores,omitempty"`
	Error              string `json:"error,omitempty"`
}

type criterion struct {
	name     string
	maxScore float64
}

type Importer struct {
	projects ProjectLookup
	evals    evaluation.Store
	now      func() time.Time
}

func New(projects ProjectLookup, evals evaluation.Store, now func() time.Time) *Importer {
	if now == nil {
		now = time.Now
	}
	return &Importer{projects: projects, evals: evals, now: now}
}

// Import parses the first sheet of an xlsx payload, groups rows by
// project name, and creates one evaluation per resolvable project with
// faculty scores seeded from each group's first row. It never mutates
// existing evaluations.
func (im *Importer) Import(ctx context.Context, r io.Reader, evalType string) ([]ProjectResult, error) {
	if evalType != evaluation.TypeMilestone && evalType != evaluation.TypeFinal {
		return nil, &evaluation.ValidationError{Fields: []evaluation.FieldError{
			{Field: "evaluation_type", Error: "must be milestone or final"},
		}}
	}

	headers, rows, err := parseSheet(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidFormat)
	}

	// Resolve the criteria set once per batch, before touching any row.
	criteria := make([]criterion, 0, len(headers))
	for _, h := range headers {
		if h == "" || isIdentifyingColumn(h) {
			continue
		}
		criteria = append(criteria, criterion{name: h, maxScore: MaxScoreFor(h)})
	}

	names, groups := groupByProject(rows)
	results := make([]ProjectResult, 0, len(names))
	for _, name := range names {
		res, err := im.importGroup(ctx, name, groups[name], criteria, evalType)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (im *Importer) importGroup(ctx context.Context, name string, group []map[string]string, criteria []criterion, evalType string) (ProjectResult, error) {
	proj, err := im.projects.GetProjectByTitle(ctx, name)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return ProjectResult{ProjectName: name, Error: "not found"}, nil
		}
		return ProjectResult{}, err
	}

	specs := make([]evaluation.ItemSpec, 0, len(criteria))
	for _, c := range criteria {
		specs = append(specs, evaluation.ItemSpec{Criterion: c.name, MaxScore: c.maxScore})
	}
	now := im.now()
	ev, err := evaluation.New(proj.ID, proj.TeamID, evalType, now.Add(dueDateOffset), specs)
	if err != nil {
		return ProjectResult{}, err
	}

	// Scores come from the group's first row only; later rows are kept as
	// raw data but do not influence seeding.
	first := group[0]
	prefilled := false
	for i := range ev.RubricItems {
		it := &ev.RubricItems[i]
		cell, ok := first[it.Criterion]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			continue
		}
		v = clamp(v, 0, it.MaxScore)
		it.Faculty = evaluation.RoleScore{
			Value:    &v,
			Comments: importedComment,
			Locked:   true,
		}
		prefilled = true
	}
	ev.ExcelData = group
	ev.HasPrefilledScores = prefilled

	if err := im.evals.PutEvaluation(ctx, ev); err != nil {
		return ProjectResult{}, err
	}
	return ProjectResult{
		ProjectName:        name,
		Success:            true,
		EvaluationID:       ev.ID,
		HasPrefilledScores: prefilled,
	}, nil
}

// parseSheet flattens the first sheet into header-keyed records.
func parseSheet(r io.Reader) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(raw) < 2 {
		return nil, nil, fmt.Errorf("%w: no data rows", ErrInvalidFormat)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([]map[string]string, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		row := map[string]string{}
		empty := true
		for i, cell := range rec {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
			row[headers[i]] = cell
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

// groupByProject partitions rows by project name, preserving first-seen
// order. Rows without a project name are dropped silently.
func groupByProject(rows []map[string]string) ([]string, map[string][]map[string]string) {
	names := []string{}
	groups := map[string][]map[string]string{}
	for _, row := range rows {
		name := strings.TrimSpace(row[projectNameColumn])
		if name == "" {
			continue
		}
		if _, ok := groups[name]; !ok {
			names = append(names, name)
		}
		groups[name] = append(groups[name], row)
	}
	return names, groups
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
