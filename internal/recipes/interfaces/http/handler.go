// Package http exposes the recipe API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"platerline-cloud/internal/audit"
	"platerline-cloud/internal/auth"
	masterdata "platerline-cloud/internal/masterdata/domain"
	recipesapp "platerline-cloud/internal/recipes/application"
	recipes "platerline-cloud/internal/recipes/domain"
)

// Handler handles recipe APIs: a project-scoped collection and
// id-addressed recipes with replaceable step lists.
type Handler struct {
	service     *recipesapp.Service
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *recipesapp.Service, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("recipe handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

// ServeProject handles /api/v1/projects/{project_id}/recipes.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request, projectID string) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListByProject(r.Context(), projectID)
		if err != nil {
			respondError(w, err)
			return
		}
		out := make([]recipeJSON, 0, len(list))
		for _, recipe := range list {
			out = append(out, recipeToJSON(recipe))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var req recipeJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		recipe := req.toDomain()
		recipe.ProjectID = projectID
		if err := h.service.Create(r.Context(), &recipe); err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(recipeToJSON(recipe))
		h.logAudit(r, projectID, "recipe.create", strconv.FormatInt(recipe.ID, 10))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ServeHTTP handles /api/v1/recipes/{id} and /api/v1/recipes/{id}/steps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/recipes/")
	if rest == r.URL.Path || rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid recipe id", http.StatusBadRequest)
		return
	}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if len(parts) == 2 && parts[1] == "steps" && r.Method == http.MethodPut {
		h.handleReplaceSteps(w, r, id)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	recipe, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, recipeToJSON(*recipe))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req recipeJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	recipe := req.toDomain()
	recipe.ID = id
	if err := h.service.Update(r.Context(), &recipe); err != nil {
		respondError(w, err)
		return
	}
	stored, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, recipeToJSON(*stored))
	h.logAudit(r, stored.ProjectID, "recipe.update", strconv.FormatInt(id, 10))
}

func (h *Handler) handleReplaceSteps(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Steps []stepJSON `json:"steps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	steps := make([]recipes.Step, 0, len(req.Steps))
	for _, step := range req.Steps {
		steps = append(steps, step.toDomain())
	}
	if err := h.service.ReplaceSteps(r.Context(), id, steps); err != nil {
		respondError(w, err)
		return
	}
	stored, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, recipeToJSON(*stored))
	h.logAudit(r, stored.ProjectID, "recipe.steps.replace", strconv.FormatInt(id, 10))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	recipe, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, recipe.ProjectID, "recipe.delete", strconv.FormatInt(id, 10))
}

func (h *Handler) logAudit(r *http.Request, projectID, action, resourceID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "recipe",
		ResourceID:   resourceID,
		ProjectID:    projectID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type recipeJSON struct {
	ID              int64      `json:"id"`
	ProjectID       string     `json:"project_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ProductionRatio int        `json:"production_ratio"`
	IsActive        bool       `json:"is_active"`
	Steps           []stepJSON `json:"steps"`
	CreatedAt       string     `json:"created_at,omitempty"`
	UpdatedAt       string     `json:"updated_at,omitempty"`
}

type stepJSON struct {
	ID           int64  `json:"id,omitempty"`
	StationID    int64  `json:"station_id"`
	StepOrder    int    `json:"step_order"`
	DwellTime    *int   `json:"dwell_time"`
	MinDwellTime *int   `json:"min_dwell_time"`
	MaxDwellTime *int   `json:"max_dwell_time"`
	DripTime     int    `json:"drip_time"`
	Notes        string `json:"notes,omitempty"`
}

func recipeToJSON(recipe recipes.Recipe) recipeJSON {
	steps := make([]stepJSON, 0, len(recipe.Steps))
	for _, step := range recipe.Steps {
		steps = append(steps, stepJSON{
			ID:           step.ID,
			StationID:    step.StationID,
			StepOrder:    step.StepOrder,
			DwellTime:    step.DwellTime,
			MinDwellTime: step.MinDwellTime,
			MaxDwellTime: step.MaxDwellTime,
			DripTime:     step.DripTime,
			Notes:        step.Notes,
		})
	}
	return recipeJSON{
		ID:              recipe.ID,
		ProjectID:       recipe.ProjectID,
		Name:            recipe.Name,
		Description:     recipe.Description,
		ProductionRatio: recipe.ProductionRatio,
		IsActive:        recipe.IsActive,
		Steps:           steps,
		CreatedAt:       recipe.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       recipe.UpdatedAt.Format(time.RFC3339),
	}
}

func (j recipeJSON) toDomain() recipes.Recipe {
	steps := make([]recipes.Step, 0, len(j.Steps))
	for _, step := range j.Steps {
		steps = append(steps, step.toDomain())
	}
	return recipes.Recipe{
		ID:              j.ID,
		ProjectID:       j.ProjectID,
		Name:            j.Name,
		Description:     j.Description,
		ProductionRatio: j.ProductionRatio,
		IsActive:        j.IsActive,
		Steps:           steps,
	}
}

func (j stepJSON) toDomain() recipes.Step {
	return recipes.Step{
		ID:           j.ID,
		StationID:    j.StationID,
		StepOrder:    j.StepOrder,
		DwellTime:    j.DwellTime,
		MinDwellTime: j.MinDwellTime,
		MaxDwellTime: j.MaxDwellTime,
		DripTime:     j.DripTime,
		Notes:        j.Notes,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, recipes.ErrNotFound) || errors.Is(err, masterdata.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
