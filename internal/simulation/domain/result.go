package simulation

import (
	"context"
	"time"
)

// DefaultRunName names simulation runs when the caller supplies none.
const DefaultRunName = "Simulation Run"

// Result is an immutable persisted snapshot of one simulation run.
type Result struct {
	ID             int64     `json:"id"`
	ProjectID      string    `json:"project_id"`
	Name           string    `json:"name"`
	SimulationDate time.Time `json:"simulation_date"`

	Report

	Notes string `json:"notes,omitempty"`
}

// ResultRepository persists simulation results. Create assigns ID and
// SimulationDate; ListByProject returns results newest-first.
type ResultRepository interface {
	Create(ctx context.Context, result *Result) error
	Get(ctx context.Context, id int64) (*Result, error)
	ListByProject(ctx context.Context, projectID string) ([]Result, error)
}
