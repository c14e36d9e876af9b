// Package memory provides in-memory simulation repositories for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	simulation "platerline-cloud/internal/simulation/domain"
)

// ParametersRepository is an in-memory simulation.ParametersRepository.
type ParametersRepository struct {
	mu     sync.RWMutex
	byProj map[string]simulation.Parameters
}

// NewParametersRepository constructs an empty repository.
func NewParametersRepository() *ParametersRepository {
	return &ParametersRepository{byProj: make(map[string]simulation.Parameters)}
}

// Get returns the stored parameters, or (nil, nil) when absent.
func (r *ParametersRepository) Get(ctx context.Context, projectID string) (*simulation.Parameters, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	params, ok := r.byProj[projectID]
	if !ok {
		return nil, nil
	}
	clone := cloneParameters(params)
	return &clone, nil
}

// CreateDefault stores params only when no row exists yet.
func (r *ParametersRepository) CreateDefault(ctx context.Context, projectID string, params simulation.Parameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byProj[projectID]; ok {
		return nil
	}
	now := time.Now().UTC()
	params.CreatedAt = now
	params.UpdatedAt = now
	r.byProj[projectID] = cloneParameters(params)
	return nil
}

// Update overwrites the stored parameters.
func (r *ParametersRepository) Update(ctx context.Context, projectID string, params simulation.Parameters) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byProj[projectID]
	if ok {
		params.CreatedAt = existing.CreatedAt
	} else if params.CreatedAt.IsZero() {
		params.CreatedAt = time.Now().UTC()
	}
	params.UpdatedAt = time.Now().UTC()
	r.byProj[projectID] = cloneParameters(params)
	return nil
}

func cloneParameters(params simulation.Parameters) simulation.Parameters {
	clone := params
	if params.ManualHoistCount != nil {
		v := *params.ManualHoistCount
		clone.ManualHoistCount = &v
	}
	return clone
}

// GoalRepository is an in-memory simulation.GoalRepository.
type GoalRepository struct {
	mu     sync.RWMutex
	byProj map[string]simulation.Goal
}

// NewGoalRepository constructs an empty repository.
func NewGoalRepository() *GoalRepository {
	return &GoalRepository{byProj: make(map[string]simulation.Goal)}
}

// Get returns the stored goal, or (nil, nil) when absent.
func (r *GoalRepository) Get(ctx context.Context, projectID string) (*simulation.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	goal, ok := r.byProj[projectID]
	if !ok {
		return nil, nil
	}
	clone := goal
	return &clone, nil
}

// CreateDefault stores goal only when no row exists yet.
func (r *GoalRepository) CreateDefault(ctx context.Context, projectID string, goal simulation.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byProj[projectID]; ok {
		return nil
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	r.byProj[projectID] = goal
	return nil
}

// Update overwrites the stored goal.
func (r *GoalRepository) Update(ctx context.Context, projectID string, goal simulation.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byProj[projectID]
	if ok {
		goal.CreatedAt = existing.CreatedAt
	} else if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now().UTC()
	}
	goal.UpdatedAt = time.Now().UTC()
	r.byProj[projectID] = goal
	return nil
}

// ResultRepository is an in-memory simulation.ResultRepository.
type ResultRepository struct {
	mu      sync.RWMutex
	nextID  int64
	results map[int64]simulation.Result
}

// NewResultRepository constructs an empty repository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{nextID: 1, results: make(map[int64]simulation.Result)}
}

// Create assigns an id and timestamp and stores the result.
func (r *ResultRepository) Create(ctx context.Context, result *simulation.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	result.ID = r.nextID
	r.nextID++
	if result.SimulationDate.IsZero() {
		result.SimulationDate = time.Now().UTC()
	}
	r.results[result.ID] = cloneResult(*result)
	return nil
}

// Get returns one result, or (nil, nil) when absent.
func (r *ResultRepository) Get(ctx context.Context, id int64) (*simulation.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[id]
	if !ok {
		return nil, nil
	}
	clone := cloneResult(result)
	return &clone, nil
}

// ListByProject returns a project's results, newest first.
func (r *ResultRepository) ListByProject(ctx context.Context, projectID string) ([]simulation.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []simulation.Result
	for _, result := range r.results {
		if result.ProjectID == projectID {
			out = append(out, cloneResult(result))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SimulationDate.Equal(out[j].SimulationDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].SimulationDate.After(out[j].SimulationDate)
	})
	return out, nil
}

func cloneResult(result simulation.Result) simulation.Result {
	clone := result
	clone.RecipeResults = append([]simulation.RecipeBreakdown(nil), result.RecipeResults...)
	clone.StationUtilization = append([]simulation.StationUsage(nil), result.StationUtilization...)
	if result.BottleneckStation != nil {
		v := *result.BottleneckStation
		clone.BottleneckStation = &v
	}
	if result.BottleneckDescription != nil {
		v := *result.BottleneckDescription
		clone.BottleneckDescription = &v
	}
	if result.Recommendations != nil {
		v := *result.Recommendations
		clone.Recommendations = &v
	}
	return clone
}
