package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campus-forge/ipd-portal/internal/project"
)

type createProjectReq struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TeamID      string `json:"team_id" validate:"required"`
}

// POST /projects
func CreateProjectHandler(store project.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, validationError(err))
			return
		}
		if _, err := store.GetTeam(r.Context(), req.TeamID); err != nil {
			writeError(w, err)
			return
		}
		p, err := store.CreateProject(r.Context(), project.Project{
			Title:       req.Title,
			Description: req.Description,
			TeamID:      req.TeamID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// GET /projects/{projectID}
func GetProjectHandler(store project.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProject(r.Context(), chi.URLParam(r, "projectID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// GET /projects
func ListProjectsHandler(store project.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.ListProjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

type createTeamReq struct {
	Name      string   `json:"name" validate:"required"`
	MemberIDs []string `json:"member_ids"`
}

// POST /teams
func CreateTeamHandler(store project.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTeamReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, validationError(err))
			return
		}
		t, err := store.CreateTeam(r.Context(), project.Team{
			Name:      req.Name,
			MemberIDs: req.MemberIDs,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}
