package http_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/campus-forge/ipd-portal/internal/xlsximport"
)

func multipartWorkbook(t *testing.T, evalType string, rows [][]any) (*bytes.Buffer, string) {
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
	wb, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "scores.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(wb.Bytes()); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.WriteField("evaluation_type", evalType); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestImportEvaluations_Endpoint(t *testing.T) {
	e := newEnv("faculty", "prof-1")
	e.seedProject(t, "Smart Campus")
	e.seedProject(t, "River Monitor")

	body, ct := multipartWorkbook(t, "milestone", [][]any{
		{"ProjectName", "StudentName", "Implementation"},
		{"Smart Campus", "Asha", "18"},
		{"River Monitor", "Chen", "12"},
		{"Ghost Project", "Dana", "9"},
	})
	req := httptest.NewRequest("POST", "/evaluations/import", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []xlsximport.ProjectResult `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	ok := 0
	for _, r := range resp.Results {
		if r.Success {
			ok++
			if !r.HasPrefilledScores {
				t.Fatalf("%s: expected prefilled scores", r.ProjectName)
			}
		} else if r.Error != "not found" {
			t.Fatalf("unexpected failure: %+v", r)
		}
	}
	if ok != 2 {
		t.Fatalf("expected 2 successful imports, got %d", ok)
	}
}

func TestImportEvaluations_MissingFile(t *testing.T) {
	e := newEnv("faculty", "prof-1")
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	_ = mw.WriteField("evaluation_type", "milestone")
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/evaluations/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImportEvaluations_BadType(t *testing.T) {
	e := newEnv("faculty", "prof-1")
	body, ct := multipartWorkbook(t, "weekly", [][]any{
		{"ProjectName", "Design"},
		{"Smart Campus", "3"},
	})
	req := httptest.NewRequest("POST", "/evaluations/import", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
