package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "platerline-cloud/internal/masterdata/domain"
)

// StationRepository persists line stations.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository constructs a repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Get returns one station, or (nil, nil) when absent.
func (r *StationRepository) Get(ctx context.Context, id int64) (*masterdata.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, project_id, station_number, process_name, position_index,
	tank_length, tank_width, distance_to_next,
	is_loading_station, is_unloading_station, requires_manual_handling, notes
FROM stations
WHERE id = $1
LIMIT 1`, id)
	return scanStation(row)
}

// ListByProject returns a project's stations ordered by position index.
func (r *StationRepository) ListByProject(ctx context.Context, projectID string) ([]masterdata.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, project_id, station_number, process_name, position_index,
	tank_length, tank_width, distance_to_next,
	is_loading_station, is_unloading_station, requires_manual_handling, notes
FROM stations
WHERE project_id = $1
ORDER BY position_index ASC, id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []masterdata.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		if station != nil {
			stations = append(stations, *station)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// Create inserts a station and assigns its id.
func (r *StationRepository) Create(ctx context.Context, station *masterdata.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil {
		return errors.New("station repo: nil station")
	}
	return r.db.QueryRowContext(ctx, `
INSERT INTO stations (
	project_id, station_number, process_name, position_index,
	tank_length, tank_width, distance_to_next,
	is_loading_station, is_unloading_station, requires_manual_handling, notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id`,
		station.ProjectID, station.StationNumber, station.ProcessName, station.PositionIndex,
		station.TankLength, station.TankWidth, station.DistanceToNext,
		station.IsLoadingStation, station.IsUnloadingStation, station.RequiresManualHandling, station.Notes,
	).Scan(&station.ID)
}

// Update overwrites a station.
func (r *StationRepository) Update(ctx context.Context, station *masterdata.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil {
		return errors.New("station repo: nil station")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE stations
SET station_number = $1, process_name = $2, position_index = $3,
	tank_length = $4, tank_width = $5, distance_to_next = $6,
	is_loading_station = $7, is_unloading_station = $8, requires_manual_handling = $9, notes = $10
WHERE id = $11`,
		station.StationNumber, station.ProcessName, station.PositionIndex,
		station.TankLength, station.TankWidth, station.DistanceToNext,
		station.IsLoadingStation, station.IsUnloadingStation, station.RequiresManualHandling, station.Notes,
		station.ID)
	return err
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	return err
}

func scanStation(row rowScanner) (*masterdata.Station, error) {
	var station masterdata.Station
	err := row.Scan(
		&station.ID,
		&station.ProjectID,
		&station.StationNumber,
		&station.ProcessName,
		&station.PositionIndex,
		&station.TankLength,
		&station.TankWidth,
		&station.DistanceToNext,
		&station.IsLoadingStation,
		&station.IsUnloadingStation,
		&station.RequiresManualHandling,
		&station.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &station, nil
}
