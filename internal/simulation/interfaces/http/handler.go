// Package http exposes the simulation API.
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
	masterdata "platerline-cloud/internal/masterdata/domain"
	"platerline-cloud/internal/observability/metrics"
	simulationapp "platerline-cloud/internal/simulation/application"
	simulation "platerline-cloud/internal/simulation/domain"
	"platerline-cloud/internal/simulation/interfaces"
)

// Handler handles simulation APIs: calculate/run/optimal-hoists under a
// project, parameters and goal, and stored results with exports.
type Handler struct {
	simulator   *simulationapp.Simulator
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(simulator *simulationapp.Simulator, auditLogger audit.Logger) (*Handler, error) {
	if simulator == nil {
		return nil, errors.New("simulation handler: nil simulator")
	}
	return &Handler{simulator: simulator, auditLogger: auditLogger}, nil
}

// ServeProject handles /api/v1/projects/{project_id}/simulation/... routes.
// rest is the path after "simulation/".
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request, projectID, rest string) {
	switch rest {
	case "calculate":
		if r.Method == http.MethodPost {
			h.handleCalculate(w, r, projectID)
			return
		}
	case "run":
		if r.Method == http.MethodPost {
			h.handleRun(w, r, projectID)
			return
		}
	case "optimal-hoists":
		if r.Method == http.MethodGet {
			h.handleOptimalHoists(w, r, projectID)
			return
		}
	case "parameters":
		switch r.Method {
		case http.MethodGet:
			h.handleGetParameters(w, r, projectID)
			return
		case http.MethodPut:
			h.handlePutParameters(w, r, projectID)
			return
		}
	case "goal":
		switch r.Method {
		case http.MethodGet:
			h.handleGetGoal(w, r, projectID)
			return
		case http.MethodPut:
			h.handlePutGoal(w, r, projectID)
			return
		}
	case "results":
		if r.Method == http.MethodGet {
			h.handleListResults(w, r, projectID)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

// ServeHTTP handles /api/v1/simulation-results/... routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/simulation-results/")
	if rest == r.URL.Path || rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid result id", http.StatusBadRequest)
		return
	}
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGetResult(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodGet {
		switch parts[1] {
		case "export.pdf":
			h.handleExportPDF(w, r, id)
			return
		case "export.xlsx":
			h.handleExportXLSX(w, r, id)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request, projectID string) {
	var req struct {
		HoistCount *int `json:"hoist_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	report, err := h.simulator.CalculateThroughput(r.Context(), projectID, req.HoistCount)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request, projectID string) {
	var req struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	result, err := h.simulator.RunSimulation(r.Context(), projectID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, result)
	h.logAudit(r, projectID, "simulation.run", strconv.FormatInt(result.ID, 10), map[string]any{
		"name": result.Name,
	})
}

func (h *Handler) handleOptimalHoists(w http.ResponseWriter, r *http.Request, projectID string) {
	count, err := h.simulator.CalculateOptimalHoists(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, map[string]int{"optimal_hoist_count": count})
}

func (h *Handler) handleGetParameters(w http.ResponseWriter, r *http.Request, projectID string) {
	params, err := h.simulator.GetParameters(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, parametersToJSON(*params))
}

func (h *Handler) handlePutParameters(w http.ResponseWriter, r *http.Request, projectID string) {
	var req parametersJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.simulator.UpdateParameters(r.Context(), projectID, req.toDomain()); err != nil {
		respondError(w, err)
		return
	}
	params, err := h.simulator.GetParameters(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, parametersToJSON(*params))
	h.logAudit(r, projectID, "simulation.parameters.update", projectID, nil)
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request, projectID string) {
	goal, err := h.simulator.GetGoal(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, goalToJSON(*goal))
}

func (h *Handler) handlePutGoal(w http.ResponseWriter, r *http.Request, projectID string) {
	var req goalJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.simulator.UpdateGoal(r.Context(), projectID, req.toDomain()); err != nil {
		respondError(w, err)
		return
	}
	goal, err := h.simulator.GetGoal(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, goalToJSON(*goal))
	h.logAudit(r, projectID, "simulation.goal.update", projectID, nil)
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request, projectID string) {
	results, err := h.simulator.ListResults(r.Context(), projectID)
	if err != nil {
		respondError(w, err)
		return
	}
	if results == nil {
		results = []simulation.Result{}
	}
	writeJSON(w, results)
}

func (h *Handler) handleGetResult(w http.ResponseWriter, r *http.Request, id int64) {
	result, err := h.simulator.GetResult(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request, id int64) {
	start := time.Now()
	status := metrics.ResultSuccess
	defer func() {
		metrics.ObserveResultExport("pdf", status, time.Since(start))
	}()

	result, err := h.simulator.GetResult(r.Context(), id)
	if err != nil {
		status = metrics.ResultError
		respondError(w, err)
		return
	}
	data, err := interfaces.BuildResultPDF(result)
	if err != nil {
		status = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, result.ProjectID, "result.export", strconv.FormatInt(id, 10), map[string]any{"format": "pdf"})
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request, id int64) {
	start := time.Now()
	status := metrics.ResultSuccess
	defer func() {
		metrics.ObserveResultExport("xlsx", status, time.Since(start))
	}()

	result, err := h.simulator.GetResult(r.Context(), id)
	if err != nil {
		status = metrics.ResultError
		respondError(w, err)
		return
	}
	data, err := interfaces.BuildResultXLSX(result)
	if err != nil {
		status = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, result.ProjectID, "result.export", strconv.FormatInt(id, 10), map[string]any{"format": "xlsx"})
}

func (h *Handler) logAudit(r *http.Request, projectID, action, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	var payload json.RawMessage
	if meta != nil {
		payload, _ = json.Marshal(meta)
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "simulation",
		ResourceID:   resourceID,
		ProjectID:    projectID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

type parametersJSON struct {
	ProcessLines         int     `json:"process_lines"`
	HasTransferShuttle   bool    `json:"has_transfer_shuttle"`
	CalculatedHoistCount int     `json:"calculated_hoist_count"`
	ManualHoistCount     *int    `json:"manual_hoist_count"`
	HoistSpeedHorizontal float64 `json:"hoist_speed_horizontal"`
	HoistSpeedVertical   float64 `json:"hoist_speed_vertical"`
	HoistAcceleration    float64 `json:"hoist_acceleration"`
	TransferTime         int     `json:"transfer_time"`
	PartsPerRack         int     `json:"parts_per_rack"`
	RackSpacing          float64 `json:"rack_spacing"`
	WorkingHoursPerDay   float64 `json:"working_hours_per_day"`
	WorkingDaysPerWeek   int     `json:"working_days_per_week"`
	PartLoadTime         int     `json:"part_load_time"`
	PartUnloadTime       int     `json:"part_unload_time"`
	OptimizationTarget   string  `json:"optimization_target"`
	CreatedAt            string  `json:"created_at,omitempty"`
	UpdatedAt            string  `json:"updated_at,omitempty"`
}

func parametersToJSON(params simulation.Parameters) parametersJSON {
	return parametersJSON{
		ProcessLines:         params.ProcessLines,
		HasTransferShuttle:   params.HasTransferShuttle,
		CalculatedHoistCount: params.CalculatedHoistCount,
		ManualHoistCount:     params.ManualHoistCount,
		HoistSpeedHorizontal: params.HoistSpeedHorizontal,
		HoistSpeedVertical:   params.HoistSpeedVertical,
		HoistAcceleration:    params.HoistAcceleration,
		TransferTime:         params.TransferTime,
		PartsPerRack:         params.PartsPerRack,
		RackSpacing:          params.RackSpacing,
		WorkingHoursPerDay:   params.WorkingHoursPerDay,
		WorkingDaysPerWeek:   params.WorkingDaysPerWeek,
		PartLoadTime:         params.PartLoadTime,
		PartUnloadTime:       params.PartUnloadTime,
		OptimizationTarget:   string(params.OptimizationTarget),
		CreatedAt:            params.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            params.UpdatedAt.Format(time.RFC3339),
	}
}

func (p parametersJSON) toDomain() simulation.Parameters {
	return simulation.Parameters{
		ProcessLines:         p.ProcessLines,
		HasTransferShuttle:   p.HasTransferShuttle,
		CalculatedHoistCount: p.CalculatedHoistCount,
		ManualHoistCount:     p.ManualHoistCount,
		HoistSpeedHorizontal: p.HoistSpeedHorizontal,
		HoistSpeedVertical:   p.HoistSpeedVertical,
		HoistAcceleration:    p.HoistAcceleration,
		TransferTime:         p.TransferTime,
		PartsPerRack:         p.PartsPerRack,
		RackSpacing:          p.RackSpacing,
		WorkingHoursPerDay:   p.WorkingHoursPerDay,
		WorkingDaysPerWeek:   p.WorkingDaysPerWeek,
		PartLoadTime:         p.PartLoadTime,
		PartUnloadTime:       p.PartUnloadTime,
		OptimizationTarget:   simulation.OptimizationTarget(p.OptimizationTarget),
	}
}

type goalJSON struct {
	PrimaryTarget       string  `json:"primary_target"`
	TargetPartsPerHour  float64 `json:"target_parts_per_hour"`
	TargetPartsPerDay   float64 `json:"target_parts_per_day"`
	TargetPartsPerWeek  float64 `json:"target_parts_per_week"`
	TargetPartsPerMonth float64 `json:"target_parts_per_month"`
	TargetPartsPerYear  float64 `json:"target_parts_per_year"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

func goalToJSON(goal simulation.Goal) goalJSON {
	return goalJSON{
		PrimaryTarget:       string(goal.PrimaryTarget),
		TargetPartsPerHour:  goal.TargetPartsPerHour,
		TargetPartsPerDay:   goal.TargetPartsPerDay,
		TargetPartsPerWeek:  goal.TargetPartsPerWeek,
		TargetPartsPerMonth: goal.TargetPartsPerMonth,
		TargetPartsPerYear:  goal.TargetPartsPerYear,
		CreatedAt:           goal.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           goal.UpdatedAt.Format(time.RFC3339),
	}
}

func (g goalJSON) toDomain() simulation.Goal {
	return simulation.Goal{
		PrimaryTarget:       simulation.TargetPeriod(g.PrimaryTarget),
		TargetPartsPerHour:  g.TargetPartsPerHour,
		TargetPartsPerDay:   g.TargetPartsPerDay,
		TargetPartsPerWeek:  g.TargetPartsPerWeek,
		TargetPartsPerMonth: g.TargetPartsPerMonth,
		TargetPartsPerYear:  g.TargetPartsPerYear,
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
	var precondition *simulation.PreconditionError
	if errors.As(err, &precondition) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": precondition.Message})
		return
	}
	if errors.Is(err, masterdata.ErrNotFound) || errors.Is(err, simulation.ErrResultNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
