package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	recipes "platerline-cloud/internal/recipes/domain"
)

// RecipeRepository persists recipes and their ordered steps.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository constructs a repository.
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Get returns one recipe with steps, or (nil, nil) when absent.
func (r *RecipeRepository) Get(ctx context.Context, id int64) (*recipes.Recipe, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("recipe repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, name, description, production_ratio, is_active, created_at, updated_at
FROM recipes
WHERE id = $1
LIMIT 1`, id)
	recipe, err := scanRecipe(row)
	if err != nil || recipe == nil {
		return nil, err
	}
	if err := r.loadSteps(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// ListByProject returns all of a project's recipes with steps.
func (r *RecipeRepository) ListByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error) {
	return r.list(ctx, `
SELECT id, project_id, name, description, production_ratio, is_active, created_at, updated_at
FROM recipes
WHERE project_id = $1
ORDER BY id ASC`, projectID)
}

// ListActiveByProject returns a project's active recipes with steps.
func (r *RecipeRepository) ListActiveByProject(ctx context.Context, projectID string) ([]recipes.Recipe, error) {
	return r.list(ctx, `
SELECT id, project_id, name, description, production_ratio, is_active, created_at, updated_at
FROM recipes
WHERE project_id = $1 AND is_active
ORDER BY id ASC`, projectID)
}

func (r *RecipeRepository) list(ctx context.Context, query, projectID string) ([]recipes.Recipe, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("recipe repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []recipes.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		if recipe != nil {
			result = append(result, *recipe)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadSteps(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Create inserts a recipe and its steps in one transaction.
func (r *RecipeRepository) Create(ctx context.Context, recipe *recipes.Recipe) error {
	if r == nil || r.db == nil {
		return errors.New("recipe repo: nil db")
	}
	if recipe == nil {
		return errors.New("recipe repo: nil recipe")
	}
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, `
INSERT INTO recipes (project_id, name, description, production_ratio, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id`,
		recipe.ProjectID, recipe.Name, recipe.Description, recipe.ProductionRatio, recipe.IsActive,
		recipe.CreatedAt, recipe.UpdatedAt,
	).Scan(&recipe.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertSteps(ctx, tx, recipe.ID, recipe.Steps); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for i := range recipe.Steps {
		recipe.Steps[i].RecipeID = recipe.ID
	}
	return nil
}

// Update overwrites a recipe's header fields. Steps are managed separately
// through ReplaceSteps.
func (r *RecipeRepository) Update(ctx context.Context, recipe *recipes.Recipe) error {
	if r == nil || r.db == nil {
		return errors.New("recipe repo: nil db")
	}
	if recipe == nil {
		return errors.New("recipe repo: nil recipe")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE recipes
SET name = $1, description = $2, production_ratio = $3, is_active = $4, updated_at = $5
WHERE id = $6`,
		recipe.Name, recipe.Description, recipe.ProductionRatio, recipe.IsActive,
		time.Now().UTC(), recipe.ID)
	return err
}

// ReplaceSteps swaps a recipe's step list in one transaction.
func (r *RecipeRepository) ReplaceSteps(ctx context.Context, recipeID int64, steps []recipes.Step) error {
	if r == nil || r.db == nil {
		return errors.New("recipe repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_steps WHERE recipe_id = $1`, recipeID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertSteps(ctx, tx, recipeID, steps); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE recipes SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), recipeID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Delete removes a recipe and its steps (FK cascade).
func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("recipe repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	return err
}

func (r *RecipeRepository) loadSteps(ctx context.Context, recipe *recipes.Recipe) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, recipe_id, station_id, step_order, dwell_time, min_dwell_time, max_dwell_time, drip_time, notes
FROM recipe_steps
WHERE recipe_id = $1
ORDER BY step_order ASC`, recipe.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var step recipes.Step
		var dwell, minDwell, maxDwell sql.NullInt64
		if err := rows.Scan(&step.ID, &step.RecipeID, &step.StationID, &step.StepOrder,
			&dwell, &minDwell, &maxDwell, &step.DripTime, &step.Notes); err != nil {
			return err
		}
		step.DwellTime = intFromNull(dwell)
		step.MinDwellTime = intFromNull(minDwell)
		step.MaxDwellTime = intFromNull(maxDwell)
		recipe.Steps = append(recipe.Steps, step)
	}
	return rows.Err()
}

func insertSteps(ctx context.Context, tx *sql.Tx, recipeID int64, steps []recipes.Step) error {
	for _, step := range steps {
		_, err := tx.ExecContext(ctx, `
INSERT INTO recipe_steps (recipe_id, station_id, step_order, dwell_time, min_dwell_time, max_dwell_time, drip_time, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			recipeID, step.StationID, step.StepOrder,
			nullFromInt(step.DwellTime), nullFromInt(step.MinDwellTime), nullFromInt(step.MaxDwellTime),
			step.DripTime, step.Notes)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanRecipe(row rowScanner) (*recipes.Recipe, error) {
	var recipe recipes.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.ProjectID,
		&recipe.Name,
		&recipe.Description,
		&recipe.ProductionRatio,
		&recipe.IsActive,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	recipe.CreatedAt = recipe.CreatedAt.UTC()
	recipe.UpdatedAt = recipe.UpdatedAt.UTC()
	return &recipe, nil
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	value := int(v.Int64)
	return &value
}

func nullFromInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}
