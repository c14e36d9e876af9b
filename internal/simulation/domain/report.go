package simulation

import "math"

// Report is the outcome of one throughput calculation. All float fields are
// rounded to two decimal places before the report leaves the engine.
type Report struct {
	PartsPerHour  float64 `json:"parts_per_hour"`
	PartsPerDay   float64 `json:"parts_per_day"`
	PartsPerWeek  float64 `json:"parts_per_week"`
	PartsPerMonth float64 `json:"parts_per_month"`
	PartsPerYear  float64 `json:"parts_per_year"`

	CycleTime         float64 `json:"cycle_time"`
	TotalProcessTime  float64 `json:"total_process_time"`
	TotalTransferTime float64 `json:"total_transfer_time"`
	TotalDripTime     float64 `json:"total_drip_time"`

	HoistCount       int     `json:"hoist_count"`
	HoistUtilization float64 `json:"hoist_utilization"`

	BottleneckStation     *string `json:"bottleneck_station"`
	BottleneckDescription *string `json:"bottleneck_description"`

	MeetsProductionGoal bool    `json:"meets_production_goal"`
	Recommendations     *string `json:"recommendations"`

	RecipeResults      []RecipeBreakdown `json:"recipe_results"`
	StationUtilization []StationUsage    `json:"station_utilization"`

	TotalRatio  int `json:"total_ratio"`
	RecipeCount int `json:"recipe_count"`
}

// RecipeBreakdown is one recipe's share of the line's aggregate throughput.
type RecipeBreakdown struct {
	RecipeID        int64   `json:"recipe_id"`
	RecipeName      string  `json:"recipe_name"`
	ProductionRatio int     `json:"production_ratio"`
	CycleTime       float64 `json:"cycle_time"`
	PartsPerHour    float64 `json:"parts_per_hour"`
	PartsPerDay     float64 `json:"parts_per_day"`
}

// StationUsage is one station's occupied time over a super-cycle.
type StationUsage struct {
	StationID      int64   `json:"station_id"`
	StationNumber  string  `json:"station_number"`
	ProcessName    string  `json:"process_name"`
	OccupiedTime   float64 `json:"occupied_time"`
	UtilizationPct float64 `json:"utilization_pct"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
