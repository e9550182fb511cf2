package xlsximport_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campus-forge/ipd-portal/internal/evaluation"
	"github.com/campus-forge/ipd-portal/internal/project"
	"github.com/campus-forge/ipd-portal/internal/xlsximport"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func seedProjects(t *testing.T, titles ...string) project.Store {
	t.Helper()
	store := project.NewInMemoryStore()
	ctx := context.Background()
	for _, title := range titles {
		team, err := store.CreateTeam(ctx, project.Team{Name: title + " team"})
		if err != nil {
			t.Fatalf("create team: %v", err)
		}
		if _, err := store.CreateProject(ctx, project.Project{Title: title, TeamID: team.ID}); err != nil {
			t.Fatalf("create project: %v", err)
		}
	}
	return store
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func TestImport_PartialFailure(t *testing.T) {
	projects := seedProjects(t, "Smart Campus", "River Monitor")
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	wb := buildWorkbook(t, [][]any{
		{"ProjectName", "StudentName", "SAPId", "Design", "Implementation"},
		{"Smart Campus", "Asha", "60001", "4", "15"},
		{"Smart Campus", "Ben", "60002", "3", "12"},
		{"River Monitor", "Chen", "60003", "5", "18"},
		{"Ghost Project", "Dana", "60004", "2", "10"},
	})

	results, err := im.Import(context.Background(), wb, evaluation.TypeMilestone)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 project results, got %d", len(results))
	}

	byName := map[string]xlsximport.ProjectResult{}
	for _, r := range results {
		byName[r.ProjectName] = r
	}
	for _, name := range []string{"Smart Campus", "River Monitor"} {
		r := byName[name]
		if !r.Success || r.EvaluationID == "" {
			t.Fatalf("%s should import: %+v", name, r)
		}
	}
	ghost := byName["Ghost Project"]
	if ghost.Success || ghost.Error != "not found" {
		t.Fatalf("unknown project must fail with not found: %+v", ghost)
	}

	// Exactly two evaluations created.
	all, err := evals.ListEvaluations(context.Background(), evaluation.ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 evaluations, got %d", len(all))
	}
}

func TestImport_SeedsFromFirstRowAndClamps(t *testing.T) {
	projects := seedProjects(t, "Smart Campus")
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	// "Design" is not in the reference table: max defaults to 5, so the
	// 7 must clamp. "Implementation" is known with max 20.
	wb := buildWorkbook(t, [][]any{
		{"ProjectName", "StudentName", "Design", "Implementation", "Notes Column"},
		{"Smart Campus", "Asha", "7", "15", "n/a"},
		{"Smart Campus", "Ben", "1", "1", "ignored"},
	})

	results, err := im.Import(context.Background(), wb, evaluation.TypeFinal)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(results) != 1 || !results[0].Success {
		t.Fatalf("unexpected results: %+v", results)
	}
	if !results[0].HasPrefilledScores {
		t.Fatalf("expected prefilled scores")
	}

	ev, err := evals.GetEvaluation(context.Background(), results[0].EvaluationID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ev.Type != evaluation.TypeFinal {
		t.Fatalf("type = %q", ev.Type)
	}
	if !ev.HasPrefilledScores {
		t.Fatalf("evaluation must be marked prefilled")
	}
	if want := fixedNow().Add(14 * 24 * time.Hour); !ev.DueDate.Equal(want) {
		t.Fatalf("due date = %v, want %v", ev.DueDate, want)
	}
	if len(ev.ExcelData) != 2 {
		t.Fatalf("raw rows not kept: %d", len(ev.ExcelData))
	}

	byCriterion := map[string]evaluation.RubricItem{}
	for _, it := range ev.RubricItems {
		byCriterion[it.Criterion] = it
	}
	design := byCriterion["Design"]
	if design.MaxScore != 5 {
		t.Fatalf("unknown criterion max = %g, want default 5", design.MaxScore)
	}
	if design.Faculty.Value == nil || *design.Faculty.Value != 5 {
		t.Fatalf("7 must clamp to 5, got %v", design.Faculty.Value)
	}
	if !design.Faculty.Locked || design.Faculty.Comments != "Imported from Excel" {
		t.Fatalf("seeded slot must be locked with import comment: %+v", design.Faculty)
	}

	impl := byCriterion["Implementation"]
	if impl.MaxScore != 20 {
		t.Fatalf("known criterion max = %g, want 20", impl.MaxScore)
	}
	if impl.Faculty.Value == nil || *impl.Faculty.Value != 15 {
		t.Fatalf("implementation seed = %v, want 15 (first row only)", impl.Faculty.Value)
	}

	// Non-numeric cell: slot stays unset and unlocked.
	notes := byCriterion["Notes Column"]
	if notes.Faculty.Value != nil || notes.Faculty.Locked {
		t.Fatalf("non-numeric cell must leave slot unset: %+v", notes.Faculty)
	}
}

func TestImport_EmptySheetRejected(t *testing.T) {
	projects := seedProjects(t)
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	wb := buildWorkbook(t, [][]any{
		{"ProjectName", "Design"},
	})
	_, err := im.Import(context.Background(), wb, evaluation.TypeMilestone)
	if !errors.Is(err, xlsximport.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestImport_GarbagePayloadRejected(t *testing.T) {
	projects := seedProjects(t)
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	_, err := im.Import(context.Background(), bytes.NewReader([]byte("definitely not a workbook")), evaluation.TypeMilestone)
	if !errors.Is(err, xlsximport.ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestImport_RowsWithoutProjectNameDropped(t *testing.T) {
	projects := seedProjects(t, "Smart Campus")
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	wb := buildWorkbook(t, [][]any{
		{"ProjectName", "Design"},
		{"", "4"},
		{"Smart Campus", "3"},
	})
	results, err := im.Import(context.Background(), wb, evaluation.TypeMilestone)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(results) != 1 || results[0].ProjectName != "Smart Campus" {
		t.Fatalf("rows without ProjectName must be dropped silently: %+v", results)
	}
}

func TestImport_BadEvaluationType(t *testing.T) {
	projects := seedProjects(t)
	evals := evaluation.NewInMemoryStore()
	im := xlsximport.New(projects, evals, fixedNow)

	wb := buildWorkbook(t, [][]any{
		{"ProjectName", "Design"},
		{"Smart Campus", "3"},
	})
	for _, bad := range []string{"", "excel-based", "weekly"} {
		_, err := im.Import(context.Background(), wb, bad)
		var vErr *evaluation.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("type %q: expected ValidationError, got %v", bad, err)
		}
		if _, err := wb.Seek(0, 0); err != nil {
			t.Fatalf("rewind: %v", err)
		}
	}
}

func TestMaxScoreFor(t *testing.T) {
	tests := []struct {
		criterion string
		want      float64
	}{
		{"Implementation", 20},
		{"implementation", 20},
		{"  Methodology ", 15},
		{"Totally New Thing", 5},
	}
	for _, tc := range tests {
		if got := xlsximport.MaxScoreFor(tc.criterion); got != tc.want {
			t.Fatalf("MaxScoreFor(%q) = %g, want %g", tc.criterion, got, tc.want)
		}
	}
}
