package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	simulation "platerline-cloud/internal/simulation/domain"
)

// ResultRepository persists simulation results. The aggregate report lives in
// simulation_results; per-recipe and per-station breakdowns are item rows.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository constructs a repository.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts the result header and its breakdown rows in one transaction.
// The assigned id and simulation date are written back to result.
func (r *ResultRepository) Create(ctx context.Context, result *simulation.Result) error {
	if r == nil || r.db == nil {
		return errors.New("result repo: nil db")
	}
	if result == nil {
		return errors.New("result repo: nil result")
	}
	if result.SimulationDate.IsZero() {
		result.SimulationDate = time.Now().UTC()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, `
INSERT INTO simulation_results (
	project_id, name, simulation_date,
	parts_per_hour, parts_per_day, parts_per_week, parts_per_month, parts_per_year,
	cycle_time, total_process_time, total_transfer_time, total_drip_time,
	hoist_count, hoist_utilization,
	bottleneck_station, bottleneck_description,
	meets_production_goal, recommendations,
	total_ratio, recipe_count, notes
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21
) RETURNING id`,
		result.ProjectID, result.Name, result.SimulationDate,
		result.PartsPerHour, result.PartsPerDay, result.PartsPerWeek, result.PartsPerMonth, result.PartsPerYear,
		result.CycleTime, result.TotalProcessTime, result.TotalTransferTime, result.TotalDripTime,
		result.HoistCount, result.HoistUtilization,
		nullStringp(result.BottleneckStation), nullStringp(result.BottleneckDescription),
		result.MeetsProductionGoal, nullStringp(result.Recommendations),
		result.TotalRatio, result.RecipeCount, result.Notes,
	).Scan(&result.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, recipe := range result.RecipeResults {
		_, err := tx.ExecContext(ctx, `
INSERT INTO simulation_result_recipes (
	result_id, recipe_id, recipe_name, production_ratio, cycle_time, parts_per_hour, parts_per_day
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			result.ID, recipe.RecipeID, recipe.RecipeName, recipe.ProductionRatio,
			recipe.CycleTime, recipe.PartsPerHour, recipe.PartsPerDay)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, station := range result.StationUtilization {
		_, err := tx.ExecContext(ctx, `
INSERT INTO simulation_result_stations (
	result_id, station_id, station_number, process_name, occupied_time, utilization_pct
) VALUES ($1,$2,$3,$4,$5,$6)`,
			result.ID, station.StationID, station.StationNumber, station.ProcessName,
			station.OccupiedTime, station.UtilizationPct)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Get fetches one result with its breakdown rows, or (nil, nil) when absent.
func (r *ResultRepository) Get(ctx context.Context, id int64) (*simulation.Result, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("result repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, resultSelect+`
WHERE id = $1
LIMIT 1`, id)
	result, err := scanResult(row)
	if err != nil || result == nil {
		return nil, err
	}
	if err := r.loadBreakdowns(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByProject lists a project's results, newest first.
func (r *ResultRepository) ListByProject(ctx context.Context, projectID string) ([]simulation.Result, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("result repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, resultSelect+`
WHERE project_id = $1
ORDER BY simulation_date DESC, id DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []simulation.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range results {
		if err := r.loadBreakdowns(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *ResultRepository) loadBreakdowns(ctx context.Context, result *simulation.Result) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT recipe_id, recipe_name, production_ratio, cycle_time, parts_per_hour, parts_per_day
FROM simulation_result_recipes
WHERE result_id = $1
ORDER BY id ASC`, result.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var recipe simulation.RecipeBreakdown
		if err := rows.Scan(&recipe.RecipeID, &recipe.RecipeName, &recipe.ProductionRatio,
			&recipe.CycleTime, &recipe.PartsPerHour, &recipe.PartsPerDay); err != nil {
			return err
		}
		result.RecipeResults = append(result.RecipeResults, recipe)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	stationRows, err := r.db.QueryContext(ctx, `
SELECT station_id, station_number, process_name, occupied_time, utilization_pct
FROM simulation_result_stations
WHERE result_id = $1
ORDER BY id ASC`, result.ID)
	if err != nil {
		return err
	}
	defer stationRows.Close()
	for stationRows.Next() {
		var station simulation.StationUsage
		if err := stationRows.Scan(&station.StationID, &station.StationNumber, &station.ProcessName,
			&station.OccupiedTime, &station.UtilizationPct); err != nil {
			return err
		}
		result.StationUtilization = append(result.StationUtilization, station)
	}
	return stationRows.Err()
}

const resultSelect = `
SELECT id, project_id, name, simulation_date,
	parts_per_hour, parts_per_day, parts_per_week, parts_per_month, parts_per_year,
	cycle_time, total_process_time, total_transfer_time, total_drip_time,
	hoist_count, hoist_utilization,
	bottleneck_station, bottleneck_description,
	meets_production_goal, recommendations,
	total_ratio, recipe_count, notes
FROM simulation_results`

func scanResult(row rowScanner) (*simulation.Result, error) {
	var result simulation.Result
	var bottleneck sql.NullString
	var bottleneckDesc sql.NullString
	var recommendations sql.NullString
	err := row.Scan(
		&result.ID,
		&result.ProjectID,
		&result.Name,
		&result.SimulationDate,
		&result.PartsPerHour,
		&result.PartsPerDay,
		&result.PartsPerWeek,
		&result.PartsPerMonth,
		&result.PartsPerYear,
		&result.CycleTime,
		&result.TotalProcessTime,
		&result.TotalTransferTime,
		&result.TotalDripTime,
		&result.HoistCount,
		&result.HoistUtilization,
		&bottleneck,
		&bottleneckDesc,
		&result.MeetsProductionGoal,
		&recommendations,
		&result.TotalRatio,
		&result.RecipeCount,
		&result.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if bottleneck.Valid {
		result.BottleneckStation = &bottleneck.String
	}
	if bottleneckDesc.Valid {
		result.BottleneckDescription = &bottleneckDesc.String
	}
	if recommendations.Valid {
		result.Recommendations = &recommendations.String
	}
	result.SimulationDate = result.SimulationDate.UTC()
	return &result, nil
}

func nullStringp(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
