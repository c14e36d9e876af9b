package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	masterdata "platerline-cloud/internal/masterdata/domain"
	"platerline-cloud/internal/observability/metrics"
	recipes "platerline-cloud/internal/recipes/domain"
	simulation "platerline-cloud/internal/simulation/domain"
)

// ProjectSource resolves a project by its business key.
// Implementations return (nil, nil) for unknown ids.
type ProjectSource interface {
	Get(ctx context.Context, projectID string) (*masterdata.Project, error)
}

// StationSource lists a project's stations in physical line order.
type StationSource interface {
	ListByProject(ctx context.Context, projectID string) ([]masterdata.Station, error)
}

// RecipeSource lists a project's active recipes with ordered steps.
type RecipeSource interface {
	ListActiveByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error)
}

// Simulator orchestrates throughput simulation for one project at a time:
// it assembles the snapshot (creating default parameters and goal on first
// access), runs the engine, and persists results.
type Simulator struct {
	projects ProjectSource
	stations StationSource
	recipes  RecipeSource
	params   simulation.ParametersRepository
	goals    simulation.GoalRepository
	results  simulation.ResultRepository
	defaults Defaults
}

// NewSimulator constructs a simulator.
func NewSimulator(
	projects ProjectSource,
	stations StationSource,
	recipeSource RecipeSource,
	params simulation.ParametersRepository,
	goals simulation.GoalRepository,
	results simulation.ResultRepository,
	defaults Defaults,
) (*Simulator, error) {
	if projects == nil {
		return nil, errors.New("simulator: nil project source")
	}
	if stations == nil {
		return nil, errors.New("simulator: nil station source")
	}
	if recipeSource == nil {
		return nil, errors.New("simulator: nil recipe source")
	}
	if params == nil {
		return nil, errors.New("simulator: nil parameters repo")
	}
	if goals == nil {
		return nil, errors.New("simulator: nil goal repo")
	}
	if results == nil {
		return nil, errors.New("simulator: nil result repo")
	}
	return &Simulator{
		projects: projects,
		stations: stations,
		recipes:  recipeSource,
		params:   params,
		goals:    goals,
		results:  results,
		defaults: defaults,
	}, nil
}

// CalculateThroughput runs a read-only throughput estimate. A nil hoistCount
// lets the engine resolve the count from stored parameters.
func (s *Simulator) CalculateThroughput(ctx context.Context, projectID string, hoistCount *int) (*simulation.Report, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSimulationCalculate(result, time.Since(start))
	}()

	snap, err := s.LoadSnapshot(ctx, projectID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	report, err := simulation.CalculateThroughput(snap, hoistCount)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return report, nil
}

// RunSimulation computes throughput and persists one immutable result.
// Nothing is persisted when the calculation reports a precondition error.
func (s *Simulator) RunSimulation(ctx context.Context, projectID, name string) (*simulation.Result, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSimulationRun(result, time.Since(start))
	}()

	snap, err := s.LoadSnapshot(ctx, projectID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	report, err := simulation.CalculateThroughput(snap, nil)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if name == "" {
		name = simulation.DefaultRunName
	}
	record := &simulation.Result{
		ProjectID: projectID,
		Name:      name,
		Report:    *report,
	}
	if err := s.results.Create(ctx, record); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return record, nil
}

// CalculateOptimalHoists returns a standalone hoist recommendation.
func (s *Simulator) CalculateOptimalHoists(ctx context.Context, projectID string) (int, error) {
	snap, err := s.LoadSnapshot(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return simulation.OptimalHoistCount(snap), nil
}

// ListResults returns a project's stored results, newest first.
func (s *Simulator) ListResults(ctx context.Context, projectID string) ([]simulation.Result, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.results.ListByProject(ctx, projectID)
}

// GetResult returns one stored result.
func (s *Simulator) GetResult(ctx context.Context, id int64) (*simulation.Result, error) {
	record, err := s.results.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, simulation.ErrResultNotFound
	}
	return record, nil
}

// LoadSnapshot assembles the immutable in-memory view the engine computes
// over. Missing parameters and goal rows are created with defaults, so a
// fresh project simulates without manual setup.
func (s *Simulator) LoadSnapshot(ctx context.Context, projectID string) (*simulation.Snapshot, error) {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	params, err := s.GetParameters(ctx, projectID)
	if err != nil {
		return nil, err
	}
	goal, err := s.GetGoal(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stations, err := s.stations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	active, err := s.recipes.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snap := &simulation.Snapshot{
		ProjectID: projectID,
		Params:    *params,
		Goal:      *goal,
		Stations:  make([]simulation.LineStation, len(stations)),
		Recipes:   make([]simulation.LineRecipe, len(active)),
	}
	for i, station := range stations {
		snap.Stations[i] = simulation.LineStation{
			ID:          station.ID,
			Number:      station.StationNumber,
			ProcessName: station.ProcessName,
		}
	}
	for i, recipe := range active {
		line := simulation.LineRecipe{
			ID:              recipe.ID,
			Name:            recipe.Name,
			ProductionRatio: recipe.ProductionRatio,
			Steps:           make([]simulation.LineStep, len(recipe.Steps)),
		}
		for j, step := range recipe.Steps {
			line.Steps[j] = simulation.LineStep{
				StationID:    step.StationID,
				DwellTime:    step.DwellTime,
				MinDwellTime: step.MinDwellTime,
				DripTime:     step.DripTime,
			}
		}
		snap.Recipes[i] = line
	}
	return snap, nil
}

// GetParameters loads a project's parameters, creating defaults on first
// access. The create is idempotent: concurrent first reads converge on the
// same stored row.
func (s *Simulator) GetParameters(ctx context.Context, projectID string) (*simulation.Parameters, error) {
	params, err := s.params.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if params != nil {
		return params, nil
	}
	defaults := s.defaults.BuildParameters()
	if err := s.params.CreateDefault(ctx, projectID, defaults); err != nil {
		return nil, err
	}
	params, err = s.params.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, fmt.Errorf("simulator: parameters missing after create for project %s", projectID)
	}
	return params, nil
}

// UpdateParameters validates and stores a project's parameters.
func (s *Simulator) UpdateParameters(ctx context.Context, projectID string, params simulation.Parameters) error {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if _, err := s.GetParameters(ctx, projectID); err != nil {
		return err
	}
	return s.params.Update(ctx, projectID, params)
}

// GetGoal loads a project's production goal, creating a zeroed default on
// first access.
func (s *Simulator) GetGoal(ctx context.Context, projectID string) (*simulation.Goal, error) {
	goal, err := s.goals.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if goal != nil {
		return goal, nil
	}
	defaults := s.defaults.BuildGoal()
	if err := s.goals.CreateDefault(ctx, projectID, defaults); err != nil {
		return nil, err
	}
	goal, err = s.goals.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, fmt.Errorf("simulator: goal missing after create for project %s", projectID)
	}
	return goal, nil
}

// UpdateGoal validates and stores a project's production goal.
func (s *Simulator) UpdateGoal(ctx context.Context, projectID string, goal simulation.Goal) error {
	if _, err := s.requireProject(ctx, projectID); err != nil {
		return err
	}
	if err := goal.Validate(); err != nil {
		return err
	}
	if _, err := s.GetGoal(ctx, projectID); err != nil {
		return err
	}
	return s.goals.Update(ctx, projectID, goal)
}

func (s *Simulator) requireProject(ctx context.Context, projectID string) (*masterdata.Project, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	return project, nil
}
