package simulation

import (
	"context"
	"errors"
	"time"
)

// TargetPeriod is the granularity a production goal is defined against.
type TargetPeriod string

const (
	TargetHour  TargetPeriod = "hour"
	TargetDay   TargetPeriod = "day"
	TargetWeek  TargetPeriod = "week"
	TargetMonth TargetPeriod = "month"
	TargetYear  TargetPeriod = "year"
)

// Valid returns true when the period is supported.
func (p TargetPeriod) Valid() bool {
	switch p {
	case TargetHour, TargetDay, TargetWeek, TargetMonth, TargetYear:
		return true
	}
	return false
}

// Goal holds a project's production targets. Exactly one period is primary;
// the goal is only considered met against that period's target.
type Goal struct {
	PrimaryTarget TargetPeriod

	TargetPartsPerHour  float64
	TargetPartsPerDay   float64
	TargetPartsPerWeek  float64
	TargetPartsPerMonth float64
	TargetPartsPerYear  float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks goal invariants.
func (g Goal) Validate() error {
	if !g.PrimaryTarget.Valid() {
		return errors.New("goal: invalid primary target")
	}
	return nil
}

// DefaultGoal returns the zeroed goal written on first access.
func DefaultGoal() Goal {
	return Goal{PrimaryTarget: TargetDay}
}

// GoalRepository manages per-project production goals.
// Get returns (nil, nil) when no row exists; CreateDefault must be idempotent.
type GoalRepository interface {
	Get(ctx context.Context, projectID string) (*Goal, error)
	CreateDefault(ctx context.Context, projectID string, goal Goal) error
	Update(ctx context.Context, projectID string, goal Goal) error
}
