package simulation

import (
	"fmt"
	"strings"
)

// Fallbacks applied when a stored line parameter is zero. An explicit zero
// is treated as absent, never as "instant": the formulas use value-or-default
// semantics for load, unload and transfer times.
const (
	fallbackPartLoadTime   = 60
	fallbackPartUnloadTime = 60
	fallbackTransferTime   = 10

	// hoistAvailability derates hoist capacity for travel overhead and
	// availability losses.
	hoistAvailability = 0.8
)

// RecipeCycleTime returns the total time in seconds to move one rack through
// every step of a recipe: load + per-step process and drip + transfer between
// consecutive steps + unload. A recipe with no steps has cycle time zero.
func RecipeCycleTime(steps []LineStep, params Parameters) float64 {
	if len(steps) == 0 {
		return 0
	}
	total := float64(secondsOr(params.PartLoadTime, fallbackPartLoadTime))
	for i, step := range steps {
		total += float64(effectiveProcessTime(step))
		total += float64(step.DripTime)
		if i < len(steps)-1 {
			total += float64(secondsOr(params.TransferTime, fallbackTransferTime))
		}
	}
	total += float64(secondsOr(params.PartUnloadTime, fallbackPartUnloadTime))
	return total
}

// StationOccupancy computes, for every station in line order, the occupied
// seconds per super-cycle: each visiting recipe contributes
// (process + drip) x production ratio per step. Steps referencing unknown
// station ids are skipped.
func StationOccupancy(snap *Snapshot) []StationUsage {
	usage := make([]StationUsage, len(snap.Stations))
	index := make(map[int64]int, len(snap.Stations))
	for i, station := range snap.Stations {
		usage[i] = StationUsage{
			StationID:     station.ID,
			StationNumber: station.Number,
			ProcessName:   station.ProcessName,
		}
		index[station.ID] = i
	}
	for _, recipe := range snap.Recipes {
		for _, step := range recipe.Steps {
			i, ok := index[step.StationID]
			if !ok {
				continue
			}
			usage[i].OccupiedTime += float64((effectiveProcessTime(step) + step.DripTime) * recipe.ProductionRatio)
		}
	}
	return usage
}

// OptimalHoistCount recommends a hoist count for the project's hourly goal.
// It returns 0 when the line has no stations or no active recipes, and 1 when
// no positive hourly target is set or the weighted cycle time degenerates.
func OptimalHoistCount(snap *Snapshot) int {
	if len(snap.Stations) == 0 || len(snap.Recipes) == 0 {
		return 0
	}
	target := snap.Goal.TargetPartsPerHour
	if target <= 0 {
		return 1
	}

	totalRatio := ratioSum(snap.Recipes)
	if totalRatio == 0 {
		totalRatio = 1
	}
	weightedCycle := weightedCycleSum(snap) / float64(totalRatio)
	if weightedCycle <= 0 {
		return 1
	}

	cyclesPerHourNeeded := target / float64(countOr(snap.Params.PartsPerRack, 1))
	cyclesPerHoistPerHour := 3600 / weightedCycle

	hoistsNeeded := int(cyclesPerHourNeeded/cyclesPerHoistPerHour) + 1
	if hoistsNeeded < 1 {
		return 1
	}
	return hoistsNeeded
}

// CalculateThroughput runs the full aggregation over a snapshot. A nil
// hoistOverride resolves the count from manual, then calculated, then a fresh
// optimal recommendation; an explicit override is used as given. Failures are
// reported as *PreconditionError.
func CalculateThroughput(snap *Snapshot, hoistOverride *int) (*Report, error) {
	if len(snap.Stations) == 0 {
		return nil, &PreconditionError{Message: msgNoStations}
	}
	if len(snap.Recipes) == 0 {
		return nil, &PreconditionError{Message: msgNoRecipes}
	}
	hasSteps := false
	for _, recipe := range snap.Recipes {
		if len(recipe.Steps) > 0 {
			hasSteps = true
			break
		}
	}
	if !hasSteps {
		return nil, &PreconditionError{Message: msgNoSteps}
	}

	hoistCount := resolveHoistCount(snap, hoistOverride)

	totalRatio := ratioSum(snap.Recipes)
	if totalRatio == 0 {
		totalRatio = 1
	}

	cycleTimes := make([]float64, len(snap.Recipes))
	weightedSum := 0.0
	for i, recipe := range snap.Recipes {
		cycleTimes[i] = RecipeCycleTime(recipe.Steps, snap.Params)
		weightedSum += cycleTimes[i] * float64(recipe.ProductionRatio)
	}

	usage := StationOccupancy(snap)

	// Bottleneck: first station in line order holding the strict maximum.
	var bottleneck *StationUsage
	maxOccupied := 0.0
	for i := range usage {
		if usage[i].OccupiedTime > maxOccupied {
			maxOccupied = usage[i].OccupiedTime
			bottleneck = &usage[i]
		}
	}

	hoistEffectiveTime := weightedSum
	if hoistCount > 0 {
		hoistEffectiveTime = weightedSum / (float64(hoistCount) * hoistAvailability)
	}
	effectiveSuperCycle := hoistEffectiveTime
	if maxOccupied > 0 && maxOccupied > hoistEffectiveTime {
		effectiveSuperCycle = maxOccupied
	}
	if effectiveSuperCycle <= 0 {
		return nil, &PreconditionError{Message: msgInvalidCycle}
	}

	partsPerRack := countOr(snap.Params.PartsPerRack, 1)
	partsPerHour := (float64(totalRatio) / effectiveSuperCycle) * 3600 * float64(partsPerRack)

	hoursPerDay := snap.Params.WorkingHoursPerDay
	if hoursPerDay == 0 {
		hoursPerDay = 8
	}
	daysPerWeek := countOr(snap.Params.WorkingDaysPerWeek, 5)

	partsPerDay := partsPerHour * hoursPerDay
	partsPerWeek := partsPerDay * float64(daysPerWeek)
	partsPerMonth := partsPerWeek * 4
	partsPerYear := partsPerMonth * 12

	recipeResults := make([]RecipeBreakdown, len(snap.Recipes))
	for i, recipe := range snap.Recipes {
		fraction := float64(recipe.ProductionRatio) / float64(totalRatio)
		recipeResults[i] = RecipeBreakdown{
			RecipeID:        recipe.ID,
			RecipeName:      recipe.Name,
			ProductionRatio: recipe.ProductionRatio,
			CycleTime:       round2(cycleTimes[i]),
			PartsPerHour:    round2(partsPerHour * fraction),
			PartsPerDay:     round2(partsPerDay * fraction),
		}
	}

	for i := range usage {
		usage[i].UtilizationPct = round2(usage[i].OccupiedTime / effectiveSuperCycle * 100)
		usage[i].OccupiedTime = round2(usage[i].OccupiedTime)
	}

	totalProcessTime := 0.0
	totalDripTime := 0.0
	totalTransferTime := 0.0
	for _, recipe := range snap.Recipes {
		for _, step := range recipe.Steps {
			totalProcessTime += float64(effectiveProcessTime(step) * recipe.ProductionRatio)
			totalDripTime += float64(step.DripTime * recipe.ProductionRatio)
		}
		if len(recipe.Steps) > 1 {
			totalTransferTime += float64(secondsOr(snap.Params.TransferTime, fallbackTransferTime) * (len(recipe.Steps) - 1) * recipe.ProductionRatio)
		}
	}

	hoistUtilization := 50.0
	if snap.Goal.TargetPartsPerHour != 0 {
		hoistUtilization = partsPerHour / snap.Goal.TargetPartsPerHour * 100
		if hoistUtilization > 100 {
			hoistUtilization = 100
		}
	}

	var bottleneckNumber, bottleneckDescription *string
	if bottleneck != nil {
		number := bottleneck.StationNumber
		description := fmt.Sprintf(
			"Station %s (%s) has the highest occupied time (%gs per super-cycle)",
			bottleneck.StationNumber, bottleneck.ProcessName, maxOccupied,
		)
		bottleneckNumber = &number
		bottleneckDescription = &description
	}

	meetsGoal := goalMet(snap.Goal, partsPerHour, partsPerDay, partsPerWeek, partsPerMonth, partsPerYear)

	var advice []string
	if !meetsGoal {
		advice = append(advice, "Consider increasing the number of hoists to improve throughput.")
		if bottleneck != nil {
			advice = append(advice, fmt.Sprintf("Optimize process time at %s to reduce bottleneck.", bottleneck.StationNumber))
		}
	}
	if hoistUtilization > 90 {
		advice = append(advice, "Hoist utilization is very high. Consider adding more hoists for reliability.")
	}
	if hoistUtilization < 30 {
		advice = append(advice, "Hoist utilization is low. Consider reducing the number of hoists to optimize costs.")
	}
	var recommendations *string
	if len(advice) > 0 {
		joined := strings.Join(advice, "; ")
		recommendations = &joined
	}

	avgCycleTime := weightedSum / float64(totalRatio)

	return &Report{
		PartsPerHour:          round2(partsPerHour),
		PartsPerDay:           round2(partsPerDay),
		PartsPerWeek:          round2(partsPerWeek),
		PartsPerMonth:         round2(partsPerMonth),
		PartsPerYear:          round2(partsPerYear),
		CycleTime:             round2(avgCycleTime),
		TotalProcessTime:      round2(totalProcessTime),
		TotalTransferTime:     round2(totalTransferTime),
		TotalDripTime:         round2(totalDripTime),
		HoistCount:            hoistCount,
		HoistUtilization:      round2(hoistUtilization),
		BottleneckStation:     bottleneckNumber,
		BottleneckDescription: bottleneckDescription,
		MeetsProductionGoal:   meetsGoal,
		Recommendations:       recommendations,
		RecipeResults:         recipeResults,
		StationUtilization:    usage,
		TotalRatio:            totalRatio,
		RecipeCount:           len(snap.Recipes),
	}, nil
}

// resolveHoistCount applies the resolution order: explicit override, manual
// override, cached calculated count, fresh optimal recommendation. A manual
// zero counts as unset; a resolved count of zero or less triggers the fresh
// recommendation. An explicit override is used as given, even if non-positive.
func resolveHoistCount(snap *Snapshot, override *int) int {
	if override != nil {
		return *override
	}
	count := snap.Params.CalculatedHoistCount
	if snap.Params.ManualHoistCount != nil && *snap.Params.ManualHoistCount != 0 {
		count = *snap.Params.ManualHoistCount
	}
	if count <= 0 {
		count = OptimalHoistCount(snap)
	}
	return count
}

func goalMet(goal Goal, perHour, perDay, perWeek, perMonth, perYear float64) bool {
	switch goal.PrimaryTarget {
	case TargetHour:
		return goal.TargetPartsPerHour != 0 && perHour >= goal.TargetPartsPerHour
	case TargetDay:
		return goal.TargetPartsPerDay != 0 && perDay >= goal.TargetPartsPerDay
	case TargetWeek:
		return goal.TargetPartsPerWeek != 0 && perWeek >= goal.TargetPartsPerWeek
	case TargetMonth:
		return goal.TargetPartsPerMonth != 0 && perMonth >= goal.TargetPartsPerMonth
	case TargetYear:
		return goal.TargetPartsPerYear != 0 && perYear >= goal.TargetPartsPerYear
	}
	return false
}

// effectiveProcessTime resolves a step's process time: dwell time when set
// and nonzero, else minimum dwell time when set and nonzero, else zero.
// Maximum dwell time never participates.
func effectiveProcessTime(step LineStep) int {
	if step.DwellTime != nil && *step.DwellTime != 0 {
		return *step.DwellTime
	}
	if step.MinDwellTime != nil && *step.MinDwellTime != 0 {
		return *step.MinDwellTime
	}
	return 0
}

// secondsOr returns v unless it is zero, in which case the fallback applies.
func secondsOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

// countOr returns v unless it is zero, in which case the fallback applies.
func countOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func ratioSum(recipes []LineRecipe) int {
	sum := 0
	for _, recipe := range recipes {
		sum += recipe.ProductionRatio
	}
	return sum
}

func weightedCycleSum(snap *Snapshot) float64 {
	sum := 0.0
	for _, recipe := range snap.Recipes {
		sum += RecipeCycleTime(recipe.Steps, snap.Params) * float64(recipe.ProductionRatio)
	}
	return sum
}
