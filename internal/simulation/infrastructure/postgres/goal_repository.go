package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	simulation "platerline-cloud/internal/simulation/domain"
)

// GoalRepository persists per-project production goals.
type GoalRepository struct {
	db *sql.DB
}

// NewGoalRepository constructs a repository.
func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Get returns a project's goal, or (nil, nil) when absent.
func (r *GoalRepository) Get(ctx context.Context, projectID string) (*simulation.Goal, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("goal repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT primary_target, target_parts_per_hour, target_parts_per_day,
	target_parts_per_week, target_parts_per_month, target_parts_per_year,
	created_at, updated_at
FROM production_goals
WHERE project_id = $1
LIMIT 1`, projectID)

	var goal simulation.Goal
	var primary string
	err := row.Scan(
		&primary,
		&goal.TargetPartsPerHour,
		&goal.TargetPartsPerDay,
		&goal.TargetPartsPerWeek,
		&goal.TargetPartsPerMonth,
		&goal.TargetPartsPerYear,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	goal.PrimaryTarget = simulation.TargetPeriod(primary)
	goal.CreatedAt = goal.CreatedAt.UTC()
	goal.UpdatedAt = goal.UpdatedAt.UTC()
	return &goal, nil
}

// CreateDefault inserts a goal row unless one already exists.
func (r *GoalRepository) CreateDefault(ctx context.Context, projectID string, goal simulation.Goal) error {
	if r == nil || r.db == nil {
		return errors.New("goal repo: nil db")
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO production_goals (
	project_id, primary_target, target_parts_per_hour, target_parts_per_day,
	target_parts_per_week, target_parts_per_month, target_parts_per_year,
	created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (project_id) DO NOTHING`,
		projectID, string(goal.PrimaryTarget), goal.TargetPartsPerHour, goal.TargetPartsPerDay,
		goal.TargetPartsPerWeek, goal.TargetPartsPerMonth, goal.TargetPartsPerYear,
		now, now,
	)
	return err
}

// Update overwrites a project's goal.
func (r *GoalRepository) Update(ctx context.Context, projectID string, goal simulation.Goal) error {
	if r == nil || r.db == nil {
		return errors.New("goal repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE production_goals
SET primary_target = $1, target_parts_per_hour = $2, target_parts_per_day = $3,
	target_parts_per_week = $4, target_parts_per_month = $5, target_parts_per_year = $6,
	updated_at = $7
WHERE project_id = $8`,
		string(goal.PrimaryTarget), goal.TargetPartsPerHour, goal.TargetPartsPerDay,
		goal.TargetPartsPerWeek, goal.TargetPartsPerMonth, goal.TargetPartsPerYear,
		time.Now().UTC(), projectID,
	)
	return err
}
