// Package apihttp routes the project-scoped API tree to context handlers.
package apihttp

import (
	"errors"
	"net/http"
	"strings"

	masterdatahttp "platerline-cloud/internal/masterdata/interfaces/http"
	recipeshttp "platerline-cloud/internal/recipes/interfaces/http"
	simulationhttp "platerline-cloud/internal/simulation/interfaces/http"
)

// ProjectRouter dispatches /api/v1/projects and everything nested under one
// project: stations, recipes, documents, and the simulation endpoints.
type ProjectRouter struct {
	projects   *masterdatahttp.ProjectHandler
	stations   *masterdatahttp.StationHandler
	documents  *masterdatahttp.DocumentHandler
	recipes    *recipeshttp.Handler
	simulation *simulationhttp.Handler
}

// NewProjectRouter constructs a router.
func NewProjectRouter(
	projects *masterdatahttp.ProjectHandler,
	stations *masterdatahttp.StationHandler,
	documents *masterdatahttp.DocumentHandler,
	recipes *recipeshttp.Handler,
	simulation *simulationhttp.Handler,
) (*ProjectRouter, error) {
	if projects == nil {
		return nil, errors.New("project router: nil project handler")
	}
	if stations == nil {
		return nil, errors.New("project router: nil station handler")
	}
	if documents == nil {
		return nil, errors.New("project router: nil document handler")
	}
	if recipes == nil {
		return nil, errors.New("project router: nil recipe handler")
	}
	if simulation == nil {
		return nil, errors.New("project router: nil simulation handler")
	}
	return &ProjectRouter{
		projects:   projects,
		stations:   stations,
		documents:  documents,
		recipes:    recipes,
		simulation: simulation,
	}, nil
}

// ServeHTTP routes /api/v1/projects...
func (rt *ProjectRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/api/v1/projects" {
		rt.projects.ServeCollection(w, r)
		return
	}
	rest := strings.TrimPrefix(path, "/api/v1/projects/")
	if rest == path || rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	projectID := parts[0]
	if len(parts) == 1 {
		rt.projects.ServeProject(w, r, projectID)
		return
	}
	switch parts[1] {
	case "stations":
		switch len(parts) {
		case 2:
			rt.stations.ServeProject(w, r, projectID, "")
		case 3:
			rt.stations.ServeProject(w, r, projectID, parts[2])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	case "recipes":
		if len(parts) == 2 {
			rt.recipes.ServeProject(w, r, projectID)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case "documents":
		if len(parts) == 3 {
			rt.documents.ServeProject(w, r, projectID, parts[2])
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case "simulation":
		if len(parts) == 3 {
			rt.simulation.ServeProject(w, r, projectID, parts[2])
			return
		}
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
