package simulation

import "errors"

// Precondition messages surfaced verbatim to API clients.
const (
	msgNoStations   = "No stations found. Please add stations before running simulation."
	msgNoRecipes    = "No active recipes found. Please add at least one recipe with steps."
	msgNoSteps      = "No recipe steps found. Please add steps to at least one recipe."
	msgInvalidCycle = "Invalid cycle time calculated. Please check recipe steps."
)

// PreconditionError reports input data that cannot be simulated. It is a
// client-facing condition, not a defect: callers render the message directly
// and nothing is persisted.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// ErrResultNotFound signals a missing stored simulation result.
var ErrResultNotFound = errors.New("simulation: result not found")
