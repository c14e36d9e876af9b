package application

import (
	"os"

	"gopkg.in/yaml.v3"

	simulation "platerline-cloud/internal/simulation/domain"
)

// Defaults is the configuration written when a project is simulated for the
// first time. Built-in values match the line defaults the product always
// shipped with; a yaml file can override individual fields.
type Defaults struct {
	Parameters ParameterDefaults `yaml:"parameters"`
	Goal       GoalDefaults      `yaml:"goal"`
}

// ParameterDefaults overrides built-in simulation parameter defaults.
type ParameterDefaults struct {
	ProcessLines         int     `yaml:"process_lines"`
	TransferTime         int     `yaml:"transfer_time"`
	PartsPerRack         int     `yaml:"parts_per_rack"`
	RackSpacing          float64 `yaml:"rack_spacing"`
	HoistSpeedHorizontal float64 `yaml:"hoist_speed_horizontal"`
	HoistSpeedVertical   float64 `yaml:"hoist_speed_vertical"`
	HoistAcceleration    float64 `yaml:"hoist_acceleration"`
	WorkingHoursPerDay   float64 `yaml:"working_hours_per_day"`
	WorkingDaysPerWeek   int     `yaml:"working_days_per_week"`
	PartLoadTime         int     `yaml:"part_load_time"`
	PartUnloadTime       int     `yaml:"part_unload_time"`
	OptimizationTarget   string  `yaml:"optimization_target"`
}

// GoalDefaults overrides built-in production goal defaults.
type GoalDefaults struct {
	PrimaryTarget string `yaml:"primary_target"`
}

// LoadDefaults loads line defaults, merging a yaml file over the built-ins
// when path is set.
func LoadDefaults(path string) (Defaults, error) {
	var cfg Defaults
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildParameters materializes the default parameter set.
func (d Defaults) BuildParameters() simulation.Parameters {
	params := simulation.DefaultParameters()
	o := d.Parameters
	if o.ProcessLines != 0 {
		params.ProcessLines = o.ProcessLines
	}
	if o.TransferTime != 0 {
		params.TransferTime = o.TransferTime
	}
	if o.PartsPerRack != 0 {
		params.PartsPerRack = o.PartsPerRack
	}
	if o.RackSpacing != 0 {
		params.RackSpacing = o.RackSpacing
	}
	if o.HoistSpeedHorizontal != 0 {
		params.HoistSpeedHorizontal = o.HoistSpeedHorizontal
	}
	if o.HoistSpeedVertical != 0 {
		params.HoistSpeedVertical = o.HoistSpeedVertical
	}
	if o.HoistAcceleration != 0 {
		params.HoistAcceleration = o.HoistAcceleration
	}
	if o.WorkingHoursPerDay != 0 {
		params.WorkingHoursPerDay = o.WorkingHoursPerDay
	}
	if o.WorkingDaysPerWeek != 0 {
		params.WorkingDaysPerWeek = o.WorkingDaysPerWeek
	}
	if o.PartLoadTime != 0 {
		params.PartLoadTime = o.PartLoadTime
	}
	if o.PartUnloadTime != 0 {
		params.PartUnloadTime = o.PartUnloadTime
	}
	if target := simulation.OptimizationTarget(o.OptimizationTarget); o.OptimizationTarget != "" && target.Valid() {
		params.OptimizationTarget = target
	}
	return params
}

// BuildGoal materializes the default production goal.
func (d Defaults) BuildGoal() simulation.Goal {
	goal := simulation.DefaultGoal()
	if period := simulation.TargetPeriod(d.Goal.PrimaryTarget); d.Goal.PrimaryTarget != "" && period.Valid() {
		goal.PrimaryTarget = period
	}
	return goal
}
