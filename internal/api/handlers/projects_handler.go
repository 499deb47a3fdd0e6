package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listing-studio/engine/internal/api/types"
	"github.com/listing-studio/engine/internal/services"
)

type ProjectsHandler struct {
	projects services.ProjectService
	validate structValidator
	defaults Defaults
}

func NewProjectsHandler(projects services.ProjectService, v structValidator, d Defaults) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, validate: v, defaults: d}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.projects.ListProjects(r.Context(), h.defaults.user(r.URL.Query().Get("userId")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectCreateRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	p, err := h.projects.CreateProject(r.Context(), req.UserID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectRenameRequest
	if !decodeBody(w, r, h.validate, &req) {
		return
	}
	p, err := h.projects.RenameProject(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, types.OKResponse{OK: true})
}
