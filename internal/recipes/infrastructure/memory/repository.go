// Package memory provides an in-memory recipe repository for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	recipes "platerline-cloud/internal/recipes/domain"
)

// RecipeRepository is an in-memory recipes.Repository.
type RecipeRepository struct {
	mu         sync.RWMutex
	nextID     int64
	nextStepID int64
	byID       map[int64]recipes.Recipe
}

// NewRecipeRepository constructs an empty repository.
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{nextID: 1, nextStepID: 1, byID: make(map[int64]recipes.Recipe)}
}

// Get returns one recipe with steps, or (nil, nil) when absent.
func (r *RecipeRepository) Get(ctx context.Context, id int64) (*recipes.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recipe, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := cloneRecipe(recipe)
	return &clone, nil
}

// ListByProject returns all of a project's recipes.
func (r *RecipeRepository) ListByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error) {
	return r.listWhere(projectID, false)
}

// ListActiveByProject returns a project's active recipes.
func (r *RecipeRepository) ListActiveByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error) {
	return r.listWhere(projectID, true)
}

func (r *RecipeRepository) listWhere(projectID string, activeOnly bool) ([]recipes.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []recipes.Recipe
	for _, recipe := range r.byID {
		if recipe.ProjectID != projectID {
			continue
		}
		if activeOnly && !recipe.IsActive {
			continue
		}
		result = append(result, cloneRecipe(recipe))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Create assigns ids and stores the recipe with its steps.
func (r *RecipeRepository) Create(ctx context.Context, recipe *recipes.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipe.ID = r.nextID
	r.nextID++
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	for i := range recipe.Steps {
		recipe.Steps[i].ID = r.nextStepID
		r.nextStepID++
		recipe.Steps[i].RecipeID = recipe.ID
	}
	r.byID[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

// Update overwrites a recipe's header fields, keeping stored steps.
func (r *RecipeRepository) Update(ctx context.Context, recipe *recipes.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[recipe.ID]
	if !ok {
		return nil
	}
	existing.Name = recipe.Name
	existing.Description = recipe.Description
	existing.ProductionRatio = recipe.ProductionRatio
	existing.IsActive = recipe.IsActive
	existing.UpdatedAt = time.Now().UTC()
	r.byID[recipe.ID] = existing
	return nil
}

// ReplaceSteps swaps a recipe's step list.
func (r *RecipeRepository) ReplaceSteps(ctx context.Context, recipeID int64, steps []recipes.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[recipeID]
	if !ok {
		return nil
	}
	replacement := make([]recipes.Step, len(steps))
	copy(replacement, steps)
	for i := range replacement {
		replacement[i].ID = r.nextStepID
		r.nextStepID++
		replacement[i].RecipeID = recipeID
	}
	sort.Slice(replacement, func(i, j int) bool { return replacement[i].StepOrder < replacement[j].StepOrder })
	existing.Steps = replacement
	existing.UpdatedAt = time.Now().UTC()
	r.byID[recipeID] = existing
	return nil
}

// Delete removes a recipe.
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func cloneRecipe(recipe recipes.Recipe) recipes.Recipe {
	clone := recipe
	clone.Steps = make([]recipes.Step, len(recipe.Steps))
	for i, step := range recipe.Steps {
		cloned := step
		if step.DwellTime != nil {
			v := *step.DwellTime
			cloned.DwellTime = &v
		}
		if step.MinDwellTime != nil {
			v := *step.MinDwellTime
			cloned.MinDwellTime = &v
		}
		if step.MaxDwellTime != nil {
			v := *step.MaxDwellTime
			cloned.MaxDwellTime = &v
		}
		clone.Steps[i] = cloned
	}
	return clone
}
