// Package http exposes the masterdata API: customers, projects, stations,
// project documents, and equipment types.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"platerline-cloud/internal/audit"
	"platerline-cloud/internal/auth"
	"platerline-cloud/internal/documents"
	masterdataapp "platerline-cloud/internal/masterdata/application"
	masterdata "platerline-cloud/internal/masterdata/domain"
	"platerline-cloud/internal/observability/metrics"
)

// maxUploadBytes caps multipart document uploads.
const maxUploadBytes = 32 << 20

// CustomerHandler handles customer CRUD.
type CustomerHandler struct {
	service     *masterdataapp.CustomerService
	auditLogger audit.Logger
}

// NewCustomerHandler constructs a handler.
func NewCustomerHandler(service *masterdataapp.CustomerService, auditLogger audit.Logger) (*CustomerHandler, error) {
	if service == nil {
		return nil, errors.New("customer handler: nil service")
	}
	return &CustomerHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles /api/v1/customers routes.
func (h *CustomerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/api/v1/customers" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
			return
		case http.MethodPost:
			h.handleCreate(w, r)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(path, "/api/v1/customers/")
	if rest == path || rest == "" || strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}
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
}

func (h *CustomerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]customerJSON, 0, len(customers))
	for _, customer := range customers {
		out = append(out, customerToJSON(customer))
	}
	writeJSON(w, out)
}

func (h *CustomerHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	customer, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, customerToJSON(*customer))
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req customerJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	customer := req.toDomain()
	if err := h.service.Create(r.Context(), &customer); err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(customerToJSON(customer))
	logAudit(r, h.auditLogger, "", "customer.create", "customer", strconv.FormatInt(customer.ID, 10), nil)
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req customerJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	customer := req.toDomain()
	customer.ID = id
	if err := h.service.Update(r.Context(), &customer); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, customerToJSON(customer))
	logAudit(r, h.auditLogger, "", "customer.update", "customer", strconv.FormatInt(id, 10), nil)
}

func (h *CustomerHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "", "customer.delete", "customer", strconv.FormatInt(id, 10), nil)
}

// ProjectHandler handles project CRUD. Sub-resource routes (stations,
// recipes, simulation, documents) are dispatched by the API router.
type ProjectHandler struct {
	service     *masterdataapp.ProjectService
	auditLogger audit.Logger
}

// NewProjectHandler constructs a handler.
func NewProjectHandler(service *masterdataapp.ProjectService, auditLogger audit.Logger) (*ProjectHandler, error) {
	if service == nil {
		return nil, errors.New("project handler: nil service")
	}
	return &ProjectHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeCollection handles GET/POST /api/v1/projects.
func (h *ProjectHandler) ServeCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		views, err := h.service.List(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		out := make([]projectJSON, 0, len(views))
		for _, view := range views {
			out = append(out, projectToJSON(view))
		}
		writeJSON(w, out)
	case http.MethodPost:
		var req projectJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		project := req.toDomain()
		if err := h.service.Create(r.Context(), &project); err != nil {
			respondError(w, err)
			return
		}
		view, err := h.service.Get(r.Context(), project.ProjectID)
		if err != nil {
			respondError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(projectToJSON(*view))
		logAudit(r, h.auditLogger, project.ProjectID, "project.create", "project", project.ProjectID, nil)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ServeProject handles GET/PUT/DELETE /api/v1/projects/{project_id}.
func (h *ProjectHandler) ServeProject(w http.ResponseWriter, r *http.Request, projectID string) {
	switch r.Method {
	case http.MethodGet:
		view, err := h.service.Get(r.Context(), projectID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, projectToJSON(*view))
	case http.MethodPut:
		var req projectJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		project := req.toDomain()
		project.ProjectID = projectID
		if err := h.service.Update(r.Context(), &project); err != nil {
			respondError(w, err)
			return
		}
		view, err := h.service.Get(r.Context(), projectID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, projectToJSON(*view))
		logAudit(r, h.auditLogger, projectID, "project.update", "project", projectID, nil)
	case http.MethodDelete:
		if err := h.service.Delete(r.Context(), projectID); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		logAudit(r, h.auditLogger, projectID, "project.delete", "project", projectID, nil)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// StationHandler handles station routes under a project.
type StationHandler struct {
	service     *masterdataapp.StationService
	auditLogger audit.Logger
}

// NewStationHandler constructs a handler.
func NewStationHandler(service *masterdataapp.StationService, auditLogger audit.Logger) (*StationHandler, error) {
	if service == nil {
		return nil, errors.New("station handler: nil service")
	}
	return &StationHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeProject handles /api/v1/projects/{project_id}/stations routes.
// rest is the path after "stations", "" for the collection.
func (h *StationHandler) ServeProject(w http.ResponseWriter, r *http.Request, projectID, rest string) {
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r, projectID)
			return
		case http.MethodPost:
			h.handleCreate(w, r, projectID)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		http.Error(w, "invalid station id", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.handleUpdate(w, r, projectID, id)
	case http.MethodDelete:
		h.handleDelete(w, r, projectID, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *StationHandler) handleList(w http.ResponseWriter, r *http.Request, projectID string) {
	stations, err := h.service.ListByProject(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]stationJSON, 0, len(stations))
	for _, station := range stations {
		out = append(out, stationToJSON(station))
	}
	writeJSON(w, out)
}

func (h *StationHandler) handleCreate(w http.ResponseWriter, r *http.Request, projectID string) {
	var req stationJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	station := req.toDomain()
	station.ProjectID = projectID
	if err := h.service.Create(r.Context(), &station); err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(stationToJSON(station))
	logAudit(r, h.auditLogger, projectID, "station.create", "station", strconv.FormatInt(station.ID, 10), nil)
}

func (h *StationHandler) handleUpdate(w http.ResponseWriter, r *http.Request, projectID string, id int64) {
	var req stationJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	station := req.toDomain()
	station.ID = id
	station.ProjectID = projectID
	if err := h.service.Update(r.Context(), &station); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, stationToJSON(station))
	logAudit(r, h.auditLogger, projectID, "station.update", "station", strconv.FormatInt(id, 10), nil)
}

func (h *StationHandler) handleDelete(w http.ResponseWriter, r *http.Request, projectID string, id int64) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, projectID, "station.delete", "station", strconv.FormatInt(id, 10), nil)
}

// DocumentHandler handles project document upload and download.
type DocumentHandler struct {
	projects    *masterdataapp.ProjectService
	storage     *documents.Storage
	auditLogger audit.Logger
}

// NewDocumentHandler constructs a handler.
func NewDocumentHandler(projects *masterdataapp.ProjectService, storage *documents.Storage, auditLogger audit.Logger) (*DocumentHandler, error) {
	if projects == nil {
		return nil, errors.New("document handler: nil project service")
	}
	if storage == nil {
		return nil, errors.New("document handler: nil storage")
	}
	return &DocumentHandler{projects: projects, storage: storage, auditLogger: auditLogger}, nil
}

// ServeProject handles /api/v1/projects/{project_id}/documents/{kind}.
func (h *DocumentHandler) ServeProject(w http.ResponseWriter, r *http.Request, projectID, kind string) {
	if !documents.ValidKind(kind) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.handleUpload(w, r, projectID, kind)
	case http.MethodGet:
		h.handleDownload(w, r, projectID, kind)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) handleUpload(w http.ResponseWriter, r *http.Request, projectID, kind string) {
	if _, err := h.projects.Get(r.Context(), projectID); err != nil {
		respondError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	path, err := h.storage.Save(projectID, kind, header.Filename, file)
	if err != nil {
		http.Error(w, "store document error", http.StatusInternalServerError)
		return
	}
	if err := h.projects.SetDocumentPath(r.Context(), projectID, kind, path); err != nil {
		respondError(w, err)
		return
	}
	metrics.IncDocumentUpload(kind)
	writeJSON(w, map[string]string{"kind": kind, "path": path})
	logAudit(r, h.auditLogger, projectID, "document.upload", "document", path, map[string]any{
		"kind":     kind,
		"filename": header.Filename,
	})
}

func (h *DocumentHandler) handleDownload(w http.ResponseWriter, r *http.Request, projectID, kind string) {
	view, err := h.projects.Get(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	path := view.SpecDocumentPath
	if kind == documents.KindSketch {
		path = view.SketchPath
	}
	if path == "" {
		http.Error(w, "no document uploaded", http.StatusNotFound)
		return
	}
	reader, err := h.storage.Open(path)
	if err != nil {
		http.Error(w, "open document error", http.StatusInternalServerError)
		return
	}
	defer reader.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepathBase(path)+`"`)
	_, _ = io.Copy(w, reader)
}

// EquipmentTypesHandler serves the selectable equipment types.
type EquipmentTypesHandler struct{}

// ServeHTTP handles GET /api/v1/equipment-types.
func (h EquipmentTypesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	types := masterdata.EquipmentTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	writeJSON(w, map[string][]string{"equipment_types": out})
}

type customerJSON struct {
	ID             int64  `json:"id"`
	CompanyName    string `json:"company_name"`
	PointOfContact string `json:"point_of_contact"`
	Email          string `json:"email"`
}

func customerToJSON(customer masterdata.Customer) customerJSON {
	return customerJSON{
		ID:             customer.ID,
		CompanyName:    customer.CompanyName,
		PointOfContact: customer.PointOfContact,
		Email:          customer.Email,
	}
}

func (c customerJSON) toDomain() masterdata.Customer {
	return masterdata.Customer{
		ID:             c.ID,
		CompanyName:    c.CompanyName,
		PointOfContact: c.PointOfContact,
		Email:          c.Email,
	}
}

type projectJSON struct {
	ProjectID        string `json:"project_id"`
	ProjectName      string `json:"project_name"`
	CustomerID       int64  `json:"customer_id"`
	CustomerName     string `json:"customer_name,omitempty"`
	EquipmentType    string `json:"equipment_type"`
	Process          string `json:"process"`
	Substrate        string `json:"substrate"`
	SpecDocumentPath string `json:"spec_document_path,omitempty"`
	SketchPath       string `json:"sketch_path,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

func projectToJSON(view masterdataapp.ProjectView) projectJSON {
	return projectJSON{
		ProjectID:        view.ProjectID,
		ProjectName:      view.ProjectName,
		CustomerID:       view.CustomerID,
		CustomerName:     view.CustomerName,
		EquipmentType:    string(view.EquipmentType),
		Process:          view.Process,
		Substrate:        view.Substrate,
		SpecDocumentPath: view.SpecDocumentPath,
		SketchPath:       view.SketchPath,
		CreatedAt:        view.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        view.UpdatedAt.Format(time.RFC3339),
	}
}

func (p projectJSON) toDomain() masterdata.Project {
	return masterdata.Project{
		ProjectID:     p.ProjectID,
		ProjectName:   p.ProjectName,
		CustomerID:    p.CustomerID,
		EquipmentType: masterdata.EquipmentType(p.EquipmentType),
		Process:       p.Process,
		Substrate:     p.Substrate,
	}
}

type stationJSON struct {
	ID                     int64   `json:"id"`
	ProjectID              string  `json:"project_id"`
	StationNumber          string  `json:"station_number"`
	ProcessName            string  `json:"process_name"`
	PositionIndex          int     `json:"position_index"`
	TankLength             float64 `json:"tank_length"`
	TankWidth              float64 `json:"tank_width"`
	DistanceToNext         float64 `json:"distance_to_next"`
	IsLoadingStation       bool    `json:"is_loading_station"`
	IsUnloadingStation     bool    `json:"is_unloading_station"`
	RequiresManualHandling bool    `json:"requires_manual_handling"`
	Notes                  string  `json:"notes"`
}

func stationToJSON(station masterdata.Station) stationJSON {
	return stationJSON{
		ID:                     station.ID,
		ProjectID:              station.ProjectID,
		StationNumber:          station.StationNumber,
		ProcessName:            station.ProcessName,
		PositionIndex:          station.PositionIndex,
		TankLength:             station.TankLength,
		TankWidth:              station.TankWidth,
		DistanceToNext:         station.DistanceToNext,
		IsLoadingStation:       station.IsLoadingStation,
		IsUnloadingStation:     station.IsUnloadingStation,
		RequiresManualHandling: station.RequiresManualHandling,
		Notes:                  station.Notes,
	}
}

func (s stationJSON) toDomain() masterdata.Station {
	return masterdata.Station{
		ID:                     s.ID,
		ProjectID:              s.ProjectID,
		StationNumber:          s.StationNumber,
		ProcessName:            s.ProcessName,
		PositionIndex:          s.PositionIndex,
		TankLength:             s.TankLength,
		TankWidth:              s.TankWidth,
		DistanceToNext:         s.DistanceToNext,
		IsLoadingStation:       s.IsLoadingStation,
		IsUnloadingStation:     s.IsUnloadingStation,
		RequiresManualHandling: s.RequiresManualHandling,
		Notes:                  s.Notes,
	}
}

func filepathBase(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, masterdata.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func logAudit(r *http.Request, logger audit.Logger, projectID, action, resourceType, resourceID string, meta map[string]any) {
	if logger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = logger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ProjectID:    projectID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
