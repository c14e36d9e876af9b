package simulation

// Snapshot is the immutable in-memory view of one project the engine
// computes over: parameters, goal, stations in physical line order, and
// active recipes with their steps in step order.
type Snapshot struct {
	ProjectID string
	Params    Parameters
	Goal      Goal
	Stations  []LineStation
	Recipes   []LineRecipe
}

// LineStation is the engine's view of a station.
type LineStation struct {
	ID          int64
	Number      string
	ProcessName string
}

// LineRecipe is the engine's view of an active recipe.
type LineRecipe struct {
	ID              int64
	Name            string
	ProductionRatio int
	Steps           []LineStep
}

// LineStep is the engine's view of one recipe step. DwellTime and
// MinDwellTime are nullable; an explicit zero is treated the same as nil
// when resolving the effective process time.
type LineStep struct {
	StationID    int64
	DwellTime    *int
	MinDwellTime *int
	DripTime     int
}
