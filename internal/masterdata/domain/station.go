package masterdata

import (
	"context"
	"errors"
)

// Station is a physical tank or process point on the plating line.
type Station struct {
	ID            int64
	ProjectID     string
	StationNumber string
	ProcessName   string
	PositionIndex int

	TankLength     float64
	TankWidth      float64
	DistanceToNext float64

	IsLoadingStation       bool
	IsUnloadingStation     bool
	RequiresManualHandling bool

	Notes string
}

// Validate checks station invariants.
func (s Station) Validate() error {
	if s.ProjectID == "" {
		return errors.New("station: empty project id")
	}
	if s.StationNumber == "" {
		return errors.New("station: empty station number")
	}
	if len(s.StationNumber) > 10 {
		return errors.New("station: station number longer than 10 characters")
	}
	if s.ProcessName == "" {
		return errors.New("station: empty process name")
	}
	return nil
}

// StationRepository manages station persistence.
// ListByProject returns stations ordered by position index, the physical
// order on the line.
type StationRepository interface {
	Get(ctx context.Context, id int64) (*Station, error)
	ListByProject(ctx context.Context, projectID string) ([]Station, error)
	Create(ctx context.Context, station *Station) error
	Update(ctx context.Context, station *Station) error
	Delete(ctx context.Context, id int64) error
}
