package simulation

import (
	"context"
	"errors"
	"time"
)

// OptimizationTarget selects what a simulation should optimize for.
type OptimizationTarget string

const (
	OptimizeThroughput OptimizationTarget = "throughput"
	OptimizeHoists     OptimizationTarget = "hoists"
	OptimizeBalanced   OptimizationTarget = "balanced"
)

// Valid returns true when the optimization target is supported.
func (t OptimizationTarget) Valid() bool {
	switch t {
	case OptimizeThroughput, OptimizeHoists, OptimizeBalanced:
		return true
	}
	return false
}

// Parameters holds the operational constants of one project's line.
// ManualHoistCount is an operator override; nil means "not configured",
// which is distinct from an explicit zero.
type Parameters struct {
	ProcessLines       int
	HasTransferShuttle bool

	CalculatedHoistCount int
	ManualHoistCount     *int
	HoistSpeedHorizontal float64
	HoistSpeedVertical   float64
	HoistAcceleration    float64

	TransferTime int
	PartsPerRack int
	RackSpacing  float64

	WorkingHoursPerDay float64
	WorkingDaysPerWeek int

	PartLoadTime   int
	PartUnloadTime int

	OptimizationTarget OptimizationTarget

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks parameter invariants.
func (p Parameters) Validate() error {
	if p.ProcessLines < 1 {
		return errors.New("parameters: process lines must be at least 1")
	}
	if !p.OptimizationTarget.Valid() {
		return errors.New("parameters: invalid optimization target")
	}
	if p.WorkingHoursPerDay < 0 || p.WorkingHoursPerDay > 24 {
		return errors.New("parameters: working hours per day out of range")
	}
	if p.WorkingDaysPerWeek < 0 || p.WorkingDaysPerWeek > 7 {
		return errors.New("parameters: working days per week out of range")
	}
	return nil
}

// DefaultParameters returns the parameter set written on first access.
func DefaultParameters() Parameters {
	return Parameters{
		ProcessLines:         1,
		HasTransferShuttle:   false,
		CalculatedHoistCount: 0,
		HoistSpeedHorizontal: 0.5,
		HoistSpeedVertical:   0.2,
		HoistAcceleration:    0.1,
		TransferTime:         10,
		PartsPerRack:         1,
		RackSpacing:          0.5,
		WorkingHoursPerDay:   8.0,
		WorkingDaysPerWeek:   5,
		PartLoadTime:         60,
		PartUnloadTime:       60,
		OptimizationTarget:   OptimizeBalanced,
	}
}

// ParametersRepository manages per-project simulation parameters.
// Get returns (nil, nil) when no row exists; CreateDefault must be
// idempotent so concurrent first reads converge on one row.
type ParametersRepository interface {
	Get(ctx context.Context, projectID string) (*Parameters, error)
	CreateDefault(ctx context.Context, projectID string, params Parameters) error
	Update(ctx context.Context, projectID string, params Parameters) error
}
