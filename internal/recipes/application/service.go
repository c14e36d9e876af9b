package application

import (
	"context"
	"errors"
	"fmt"

	masterdata "platerline-cloud/internal/masterdata/domain"
	recipes "platerline-cloud/internal/recipes/domain"
)

// ProjectSource resolves a project by its business key.
type ProjectSource interface {
	Get(ctx context.Context, projectID string) (*masterdata.Project, error)
}

// StationSource lists a project's stations.
type StationSource interface {
	ListByProject(ctx context.Context, projectID string) ([]masterdata.Station, error)
}

// Service manages recipes and their steps. Steps may only reference stations
// belonging to the recipe's project.
type Service struct {
	recipes  recipes.Repository
	projects ProjectSource
	stations StationSource
}

// NewService constructs a recipe service.
func NewService(repo recipes.Repository, projects ProjectSource, stations StationSource) (*Service, error) {
	if repo == nil {
		return nil, errors.New("recipe service: nil repository")
	}
	if projects == nil {
		return nil, errors.New("recipe service: nil project source")
	}
	if stations == nil {
		return nil, errors.New("recipe service: nil station source")
	}
	return &Service{recipes: repo, projects: projects, stations: stations}, nil
}

// ListByProject returns a project's recipes with steps.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.recipes.ListByProject(ctx, projectID)
}

// Get returns one recipe with steps.
func (s *Service) Get(ctx context.Context, id int64) (*recipes.Recipe, error) {
	recipe, err := s.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, fmt.Errorf("recipe %d: %w", id, recipes.ErrNotFound)
	}
	return recipe, nil
}

// Create validates and stores a new recipe with its steps.
func (s *Service) Create(ctx context.Context, recipe *recipes.Recipe) error {
	if recipe == nil {
		return errors.New("recipe service: nil recipe")
	}
	if err := recipe.Validate(); err != nil {
		return err
	}
	if err := s.requireProject(ctx, recipe.ProjectID); err != nil {
		return err
	}
	if err := s.checkStations(ctx, recipe.ProjectID, recipe.Steps); err != nil {
		return err
	}
	return s.recipes.Create(ctx, recipe)
}

// Update validates and stores an existing recipe's header fields.
func (s *Service) Update(ctx context.Context, recipe *recipes.Recipe) error {
	if recipe == nil {
		return errors.New("recipe service: nil recipe")
	}
	existing, err := s.Get(ctx, recipe.ID)
	if err != nil {
		return err
	}
	recipe.ProjectID = existing.ProjectID
	if err := recipe.Validate(); err != nil {
		return err
	}
	return s.recipes.Update(ctx, recipe)
}

// ReplaceSteps swaps a recipe's ordered step list.
func (s *Service) ReplaceSteps(ctx context.Context, recipeID int64, steps []recipes.Step) error {
	existing, err := s.Get(ctx, recipeID)
	if err != nil {
		return err
	}
	probe := *existing
	probe.Steps = steps
	if err := probe.Validate(); err != nil {
		return err
	}
	if err := s.checkStations(ctx, existing.ProjectID, steps); err != nil {
		return err
	}
	return s.recipes.ReplaceSteps(ctx, recipeID, steps)
}

// Delete removes a recipe and its steps.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.recipes.Delete(ctx, id)
}

func (s *Service) requireProject(ctx context.Context, projectID string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	return nil
}

func (s *Service) checkStations(ctx context.Context, projectID string, steps []recipes.Step) error {
	if len(steps) == 0 {
		return nil
	}
	stations, err := s.stations.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	known := make(map[int64]struct{}, len(stations))
	for _, station := range stations {
		known[station.ID] = struct{}{}
	}
	for _, step := range steps {
		if _, ok := known[step.StationID]; !ok {
			return fmt.Errorf("recipe step: station %d not on project %s", step.StationID, projectID)
		}
	}
	return nil
}
