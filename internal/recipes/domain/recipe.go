package recipes

import (
	"context"
	"errors"
	"time"
)

// Recipe is a named, weighted path through stations for one part type.
// Only active recipes participate in simulation.
type Recipe struct {
	ID              int64
	ProjectID       string
	Name            string
	Description     string
	ProductionRatio int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Steps []Step
}

// Step is one visit, within a recipe, to a station.
// DwellTime, MinDwellTime and MaxDwellTime are nullable; MaxDwellTime is
// informational and never enters the cycle-time formula.
type Step struct {
	ID        int64
	RecipeID  int64
	StationID int64
	StepOrder int

	DwellTime    *int
	MinDwellTime *int
	MaxDwellTime *int
	DripTime     int

	Notes string
}

// Validate checks recipe invariants.
func (r Recipe) Validate() error {
	if r.ProjectID == "" {
		return errors.New("recipe: empty project id")
	}
	if r.Name == "" {
		return errors.New("recipe: empty name")
	}
	if r.ProductionRatio <= 0 {
		return errors.New("recipe: production ratio must be positive")
	}
	seen := make(map[int]struct{}, len(r.Steps))
	for _, step := range r.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
		if _, ok := seen[step.StepOrder]; ok {
			return errors.New("recipe: duplicate step order")
		}
		seen[step.StepOrder] = struct{}{}
	}
	return nil
}

// Validate checks step invariants.
func (s Step) Validate() error {
	if s.StationID <= 0 {
		return errors.New("recipe step: missing station")
	}
	if s.DripTime < 0 {
		return errors.New("recipe step: negative drip time")
	}
	return nil
}

// ErrNotFound signals a missing recipe.
var ErrNotFound = errors.New("recipes: not found")

// Repository manages recipe persistence. Loaded recipes carry their steps
// ordered by step order.
type Repository interface {
	Get(ctx context.Context, id int64) (*Recipe, error)
	ListByProject(ctx context.Context, projectID string) ([]Recipe, error)
	ListActiveByProject(ctx context.Context, projectID string) ([]Recipe, error)
	Create(ctx context.Context, recipe *Recipe) error
	Update(ctx context.Context, recipe *Recipe) error
	ReplaceSteps(ctx context.Context, recipeID int64, steps []Step) error
	Delete(ctx context.Context, id int64) error
}
