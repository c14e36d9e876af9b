package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	simulation "platerline-cloud/internal/simulation/domain"
)

// ParametersRepository persists per-project simulation parameters.
type ParametersRepository struct {
	db *sql.DB
}

// NewParametersRepository constructs a repository.
func NewParametersRepository(db *sql.DB) *ParametersRepository {
	return &ParametersRepository{db: db}
}

// Get returns a project's parameters, or (nil, nil) when absent.
func (r *ParametersRepository) Get(ctx context.Context, projectID string) (*simulation.Parameters, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("parameters repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT process_lines, has_transfer_shuttle, calculated_hoist_count, manual_hoist_count,
	hoist_speed_horizontal, hoist_speed_vertical, hoist_acceleration,
	transfer_time, parts_per_rack, rack_spacing,
	working_hours_per_day, working_days_per_week,
	part_load_time, part_unload_time, optimization_target,
	created_at, updated_at
FROM simulation_parameters
WHERE project_id = $1
LIMIT 1`, projectID)
	return scanParameters(row)
}

// CreateDefault inserts a parameter row unless one already exists.
func (r *ParametersRepository) CreateDefault(ctx context.Context, projectID string, params simulation.Parameters) error {
	if r == nil || r.db == nil {
		return errors.New("parameters repo: nil db")
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO simulation_parameters (
	project_id, process_lines, has_transfer_shuttle, calculated_hoist_count, manual_hoist_count,
	hoist_speed_horizontal, hoist_speed_vertical, hoist_acceleration,
	transfer_time, parts_per_rack, rack_spacing,
	working_hours_per_day, working_days_per_week,
	part_load_time, part_unload_time, optimization_target,
	created_at, updated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18
)
ON CONFLICT (project_id) DO NOTHING`,
		projectID, params.ProcessLines, params.HasTransferShuttle, params.CalculatedHoistCount, nullIntp(params.ManualHoistCount),
		params.HoistSpeedHorizontal, params.HoistSpeedVertical, params.HoistAcceleration,
		params.TransferTime, params.PartsPerRack, params.RackSpacing,
		params.WorkingHoursPerDay, params.WorkingDaysPerWeek,
		params.PartLoadTime, params.PartUnloadTime, string(params.OptimizationTarget),
		now, now,
	)
	return err
}

// Update overwrites a project's parameters.
func (r *ParametersRepository) Update(ctx context.Context, projectID string, params simulation.Parameters) error {
	if r == nil || r.db == nil {
		return errors.New("parameters repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE simulation_parameters
SET process_lines = $1, has_transfer_shuttle = $2, calculated_hoist_count = $3, manual_hoist_count = $4,
	hoist_speed_horizontal = $5, hoist_speed_vertical = $6, hoist_acceleration = $7,
	transfer_time = $8, parts_per_rack = $9, rack_spacing = $10,
	working_hours_per_day = $11, working_days_per_week = $12,
	part_load_time = $13, part_unload_time = $14, optimization_target = $15,
	updated_at = $16
WHERE project_id = $17`,
		params.ProcessLines, params.HasTransferShuttle, params.CalculatedHoistCount, nullIntp(params.ManualHoistCount),
		params.HoistSpeedHorizontal, params.HoistSpeedVertical, params.HoistAcceleration,
		params.TransferTime, params.PartsPerRack, params.RackSpacing,
		params.WorkingHoursPerDay, params.WorkingDaysPerWeek,
		params.PartLoadTime, params.PartUnloadTime, string(params.OptimizationTarget),
		time.Now().UTC(), projectID,
	)
	return err
}

func scanParameters(row rowScanner) (*simulation.Parameters, error) {
	var params simulation.Parameters
	var manualHoists sql.NullInt64
	var target string
	err := row.Scan(
		&params.ProcessLines,
		&params.HasTransferShuttle,
		&params.CalculatedHoistCount,
		&manualHoists,
		&params.HoistSpeedHorizontal,
		&params.HoistSpeedVertical,
		&params.HoistAcceleration,
		&params.TransferTime,
		&params.PartsPerRack,
		&params.RackSpacing,
		&params.WorkingHoursPerDay,
		&params.WorkingDaysPerWeek,
		&params.PartLoadTime,
		&params.PartUnloadTime,
		&target,
		&params.CreatedAt,
		&params.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if manualHoists.Valid {
		v := int(manualHoists.Int64)
		params.ManualHoistCount = &v
	}
	params.OptimizationTarget = simulation.OptimizationTarget(target)
	params.CreatedAt = params.CreatedAt.UTC()
	params.UpdatedAt = params.UpdatedAt.UTC()
	return &params, nil
}

func nullIntp(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}
