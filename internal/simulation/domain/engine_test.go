package simulation

import (
	"math"
	"strings"
	"testing"
)

func intp(v int) *int { return &v }

func testParams() Parameters {
	return DefaultParameters()
}

func singleStationSnapshot(steps []LineStep) *Snapshot {
	return &Snapshot{
		ProjectID: "P1",
		Params:    testParams(),
		Goal:      DefaultGoal(),
		Stations:  []LineStation{{ID: 1, Number: "S1", ProcessName: "Copper Plate"}},
		Recipes: []LineRecipe{
			{ID: 10, Name: "Standard", ProductionRatio: 1, Steps: steps},
		},
	}
}

func TestRecipeCycleTime_NoSteps(t *testing.T) {
	if got := RecipeCycleTime(nil, testParams()); got != 0 {
		t.Fatalf("expected 0 cycle time for empty recipe, got %v", got)
	}
}

func TestRecipeCycleTime_KnownScenario(t *testing.T) {
	// load 60 + 30 + 5 + transfer 10 + 20 + 5 + unload 60 = 190
	steps := []LineStep{
		{StationID: 1, DwellTime: intp(30), DripTime: 5},
		{StationID: 1, DwellTime: intp(20), DripTime: 5},
	}
	if got := RecipeCycleTime(steps, testParams()); got != 190 {
		t.Fatalf("expected 190s cycle time, got %v", got)
	}
}

func TestRecipeCycleTime_StepsWithoutDwellStillCountTransfers(t *testing.T) {
	steps := []LineStep{
		{StationID: 1},
		{StationID: 1},
		{StationID: 1},
	}
	// load 60 + unload 60 + 2 transfers of 10 = 140
	if got := RecipeCycleTime(steps, testParams()); got != 140 {
		t.Fatalf("expected 140s cycle time, got %v", got)
	}
}

func TestRecipeCycleTime_ExplicitZeroParamsFallBack(t *testing.T) {
	params := testParams()
	params.PartLoadTime = 0
	params.PartUnloadTime = 0
	params.TransferTime = 0
	steps := []LineStep{
		{StationID: 1, DwellTime: intp(10)},
		{StationID: 1, DwellTime: intp(10)},
	}
	// zero stored values fall back to 60/60/10
	if got := RecipeCycleTime(steps, params); got != 150 {
		t.Fatalf("expected 150s cycle time with fallbacks, got %v", got)
	}
}

func TestRecipeCycleTime_MinDwellFallback(t *testing.T) {
	steps := []LineStep{{StationID: 1, MinDwellTime: intp(45)}}
	if got := RecipeCycleTime(steps, testParams()); got != 165 {
		t.Fatalf("expected 165s (60+45+60), got %v", got)
	}
	// explicit zero dwell falls through to min dwell
	steps = []LineStep{{StationID: 1, DwellTime: intp(0), MinDwellTime: intp(45)}}
	if got := RecipeCycleTime(steps, testParams()); got != 165 {
		t.Fatalf("expected zero dwell to fall back to min dwell, got %v", got)
	}
}

func TestRecipeCycleTime_Monotonic(t *testing.T) {
	base := []LineStep{
		{StationID: 1, DwellTime: intp(30), DripTime: 5},
		{StationID: 1, DwellTime: intp(20), DripTime: 5},
	}
	baseline := RecipeCycleTime(base, testParams())
	for _, bump := range []int{1, 10, 100} {
		longer := []LineStep{
			{StationID: 1, DwellTime: intp(30 + bump), DripTime: 5},
			{StationID: 1, DwellTime: intp(20), DripTime: 5},
		}
		if RecipeCycleTime(longer, testParams()) <= baseline {
			t.Fatalf("cycle time not monotonic in dwell time (+%d)", bump)
		}
		drippier := []LineStep{
			{StationID: 1, DwellTime: intp(30), DripTime: 5 + bump},
			{StationID: 1, DwellTime: intp(20), DripTime: 5},
		}
		if RecipeCycleTime(drippier, testParams()) <= baseline {
			t.Fatalf("cycle time not monotonic in drip time (+%d)", bump)
		}
	}
}

func TestStationOccupancy_WeightedByRatio(t *testing.T) {
	snap := &Snapshot{
		Params: testParams(),
		Goal:   DefaultGoal(),
		Stations: []LineStation{
			{ID: 1, Number: "S1", ProcessName: "Clean"},
			{ID: 2, Number: "S2", ProcessName: "Plate"},
			{ID: 3, Number: "S3", ProcessName: "Rinse"},
		},
		Recipes: []LineRecipe{
			{ID: 10, Name: "A", ProductionRatio: 3, Steps: []LineStep{
				{StationID: 1, DwellTime: intp(10), DripTime: 2},
				{StationID: 2, DwellTime: intp(50)},
			}},
			{ID: 11, Name: "B", ProductionRatio: 1, Steps: []LineStep{
				{StationID: 2, DwellTime: intp(40), DripTime: 10},
			}},
		},
	}
	usage := StationOccupancy(snap)
	if len(usage) != 3 {
		t.Fatalf("expected usage for all 3 stations, got %d", len(usage))
	}
	if usage[0].OccupiedTime != 36 { // (10+2)*3
		t.Fatalf("station 1 occupancy: expected 36, got %v", usage[0].OccupiedTime)
	}
	if usage[1].OccupiedTime != 200 { // 50*3 + (40+10)*1
		t.Fatalf("station 2 occupancy: expected 200, got %v", usage[1].OccupiedTime)
	}
	if usage[2].OccupiedTime != 0 {
		t.Fatalf("unvisited station should stay at 0, got %v", usage[2].OccupiedTime)
	}
}

func TestStationOccupancy_UnknownStationIgnored(t *testing.T) {
	snap := singleStationSnapshot([]LineStep{
		{StationID: 1, DwellTime: intp(30)},
		{StationID: 999, DwellTime: intp(500)},
	})
	usage := StationOccupancy(snap)
	if usage[0].OccupiedTime != 30 {
		t.Fatalf("expected unknown station reference to be skipped, got %v", usage[0].OccupiedTime)
	}
}

func TestOptimalHoistCount_Sentinels(t *testing.T) {
	empty := &Snapshot{Params: testParams(), Goal: DefaultGoal()}
	if got := OptimalHoistCount(empty); got != 0 {
		t.Fatalf("expected 0 with no stations/recipes, got %d", got)
	}

	noRecipes := &Snapshot{
		Params:   testParams(),
		Goal:     DefaultGoal(),
		Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
	}
	if got := OptimalHoistCount(noRecipes); got != 0 {
		t.Fatalf("expected 0 with no recipes, got %d", got)
	}

	snap := singleStationSnapshot([]LineStep{{StationID: 1, DwellTime: intp(30)}})
	if got := OptimalHoistCount(snap); got != 1 {
		t.Fatalf("expected 1 with no positive hourly target, got %d", got)
	}
	snap.Goal.TargetPartsPerHour = -10
	if got := OptimalHoistCount(snap); got != 1 {
		t.Fatalf("expected 1 with negative target, got %d", got)
	}
}

func TestOptimalHoistCount_FromTarget(t *testing.T) {
	snap := singleStationSnapshot([]LineStep{{StationID: 1, DwellTime: intp(240)}})
	// cycle = 60+240+60 = 360s -> 10 cycles per hoist per hour
	snap.Goal.TargetPartsPerHour = 25
	// 25 cycles needed / 10 per hoist = 2.5 -> floor + 1 = 3
	if got := OptimalHoistCount(snap); got != 3 {
		t.Fatalf("expected 3 hoists, got %d", got)
	}
}

func TestCalculateThroughput_Preconditions(t *testing.T) {
	cases := []struct {
		name string
		snap *Snapshot
		want string
	}{
		{
			name: "no stations",
			snap: &Snapshot{Params: testParams(), Goal: DefaultGoal()},
			want: "No stations found. Please add stations before running simulation.",
		},
		{
			name: "no recipes",
			snap: &Snapshot{
				Params:   testParams(),
				Goal:     DefaultGoal(),
				Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
			},
			want: "No active recipes found. Please add at least one recipe with steps.",
		},
		{
			name: "no steps",
			snap: &Snapshot{
				Params:   testParams(),
				Goal:     DefaultGoal(),
				Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
				Recipes:  []LineRecipe{{ID: 10, Name: "Empty", ProductionRatio: 1}},
			},
			want: "No recipe steps found. Please add steps to at least one recipe.",
		},
	}
	for _, tc := range cases {
		report, err := CalculateThroughput(tc.snap, nil)
		if report != nil {
			t.Fatalf("%s: expected no report", tc.name)
		}
		precondition, ok := err.(*PreconditionError)
		if !ok {
			t.Fatalf("%s: expected precondition error, got %v", tc.name, err)
		}
		if precondition.Message != tc.want {
			t.Fatalf("%s: message mismatch: %q", tc.name, precondition.Message)
		}
	}
}

func TestCalculateThroughput_KnownScenario(t *testing.T) {
	snap := singleStationSnapshot([]LineStep{
		{StationID: 1, DwellTime: intp(30), DripTime: 5},
		{StationID: 1, DwellTime: intp(20), DripTime: 5},
	})
	report, err := CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if report.CycleTime != 190 {
		t.Fatalf("expected 190s weighted cycle time, got %v", report.CycleTime)
	}
	if report.HoistCount != 1 {
		t.Fatalf("expected 1 hoist (no goal set), got %d", report.HoistCount)
	}
	// occupancy 60s < 190/0.8 = 237.5 -> hoist-bound line
	rawPPH := 1.0 / 237.5 * 3600
	if report.PartsPerHour != round2(rawPPH) {
		t.Fatalf("expected %v parts/hour, got %v", round2(rawPPH), report.PartsPerHour)
	}
	if report.PartsPerDay != round2(rawPPH*8) {
		t.Fatalf("parts per day should scale by working hours, got %v", report.PartsPerDay)
	}
	rawWeek := rawPPH * 8 * 5
	if report.PartsPerWeek != round2(rawWeek) || report.PartsPerMonth != round2(rawWeek*4) || report.PartsPerYear != round2(rawWeek*4*12) {
		t.Fatalf("week/month/year derivation mismatch: %v %v %v", report.PartsPerWeek, report.PartsPerMonth, report.PartsPerYear)
	}
	if report.TotalProcessTime != 50 || report.TotalDripTime != 10 || report.TotalTransferTime != 10 {
		t.Fatalf("time sums mismatch: %v %v %v", report.TotalProcessTime, report.TotalDripTime, report.TotalTransferTime)
	}
	if report.BottleneckStation == nil || *report.BottleneckStation != "S1" {
		t.Fatalf("expected bottleneck S1, got %v", report.BottleneckStation)
	}
	if report.HoistUtilization != 50 {
		t.Fatalf("expected neutral 50%% utilization without a goal, got %v", report.HoistUtilization)
	}
	if report.MeetsProductionGoal {
		t.Fatal("goal with zero target must never be met")
	}
	if report.TotalRatio != 1 || report.RecipeCount != 1 {
		t.Fatalf("ratio/count mismatch: %d %d", report.TotalRatio, report.RecipeCount)
	}
}

func TestCalculateThroughput_WeightedCycle(t *testing.T) {
	params := testParams()
	params.PartLoadTime = 30
	params.PartUnloadTime = 30
	snap := &Snapshot{
		Params:   params,
		Goal:     DefaultGoal(),
		Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
		Recipes: []LineRecipe{
			// 30 + 40 + 30 = 100s
			{ID: 10, Name: "Fast", ProductionRatio: 3, Steps: []LineStep{{StationID: 1, DwellTime: intp(40)}}},
			// 30 + 140 + 30 = 200s
			{ID: 11, Name: "Slow", ProductionRatio: 1, Steps: []LineStep{{StationID: 1, DwellTime: intp(140)}}},
		},
	}
	report, err := CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// (3*100 + 1*200) / 4 = 125
	if report.CycleTime != 125 {
		t.Fatalf("expected weighted cycle 125s, got %v", report.CycleTime)
	}
	if report.TotalRatio != 4 {
		t.Fatalf("expected total ratio 4, got %d", report.TotalRatio)
	}
}

func TestCalculateThroughput_RecipeSharesSumToAggregate(t *testing.T) {
	snap := &Snapshot{
		Params:   testParams(),
		Goal:     DefaultGoal(),
		Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
		Recipes: []LineRecipe{
			{ID: 10, Name: "A", ProductionRatio: 3, Steps: []LineStep{{StationID: 1, DwellTime: intp(40)}}},
			{ID: 11, Name: "B", ProductionRatio: 2, Steps: []LineStep{{StationID: 1, DwellTime: intp(90)}}},
			{ID: 12, Name: "C", ProductionRatio: 1, Steps: []LineStep{{StationID: 1, DwellTime: intp(140)}}},
		},
	}
	report, err := CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	sum := 0.0
	for _, breakdown := range report.RecipeResults {
		sum += breakdown.PartsPerHour
	}
	if math.Abs(sum-report.PartsPerHour) > 0.05 {
		t.Fatalf("recipe shares %v do not sum to aggregate %v", sum, report.PartsPerHour)
	}
}

func TestCalculateThroughput_HoistResolutionOrder(t *testing.T) {
	steps := []LineStep{{StationID: 1, DwellTime: intp(30)}}

	snap := singleStationSnapshot(steps)
	override := 7
	report, err := CalculateThroughput(snap, &override)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if report.HoistCount != 7 {
		t.Fatalf("explicit override ignored: %d", report.HoistCount)
	}

	snap = singleStationSnapshot(steps)
	snap.Params.ManualHoistCount = intp(4)
	snap.Params.CalculatedHoistCount = 2
	if report, err = CalculateThroughput(snap, nil); err != nil || report.HoistCount != 4 {
		t.Fatalf("manual count should win: %d %v", report.HoistCount, err)
	}

	snap = singleStationSnapshot(steps)
	snap.Params.ManualHoistCount = intp(0) // explicit zero counts as unset
	snap.Params.CalculatedHoistCount = 2
	if report, err = CalculateThroughput(snap, nil); err != nil || report.HoistCount != 2 {
		t.Fatalf("calculated count should be used: %d %v", report.HoistCount, err)
	}

	snap = singleStationSnapshot(steps)
	snap.Params.CalculatedHoistCount = 0
	if report, err = CalculateThroughput(snap, nil); err != nil || report.HoistCount != 1 {
		t.Fatalf("optimal fallback expected 1: %d %v", report.HoistCount, err)
	}
}

func TestCalculateThroughput_StationBoundLine(t *testing.T) {
	snap := &Snapshot{
		Params:   testParams(),
		Goal:     DefaultGoal(),
		Stations: []LineStation{{ID: 1, Number: "S1", ProcessName: "Plate"}},
		Recipes: []LineRecipe{
			{ID: 10, Name: "Heavy", ProductionRatio: 10, Steps: []LineStep{{StationID: 1, DwellTime: intp(100)}}},
		},
	}
	override := 50 // so much hoist capacity that the station dominates
	report, err := CalculateThroughput(snap, &override)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// occupancy = 100*10 = 1000s; hoist effective = 2200/40 = 55s
	wantPPH := round2(10.0 / 1000 * 3600)
	if report.PartsPerHour != wantPPH {
		t.Fatalf("expected station-bound %v parts/hour, got %v", wantPPH, report.PartsPerHour)
	}
	if report.StationUtilization[0].UtilizationPct != 100 {
		t.Fatalf("bottleneck station should be fully utilized, got %v", report.StationUtilization[0].UtilizationPct)
	}
}

func TestCalculateThroughput_BottleneckFirstWins(t *testing.T) {
	snap := &Snapshot{
		Params: testParams(),
		Goal:   DefaultGoal(),
		Stations: []LineStation{
			{ID: 1, Number: "S1", ProcessName: "Clean"},
			{ID: 2, Number: "S2", ProcessName: "Plate"},
		},
		Recipes: []LineRecipe{
			{ID: 10, Name: "A", ProductionRatio: 1, Steps: []LineStep{
				{StationID: 1, DwellTime: intp(80)},
				{StationID: 2, DwellTime: intp(80)},
			}},
		},
	}
	report, err := CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if report.BottleneckStation == nil || *report.BottleneckStation != "S1" {
		t.Fatalf("tie should resolve to first station in line order, got %v", report.BottleneckStation)
	}
	if report.BottleneckDescription == nil || !strings.Contains(*report.BottleneckDescription, "80s per super-cycle") {
		t.Fatalf("unexpected bottleneck description: %v", report.BottleneckDescription)
	}
}

func TestCalculateThroughput_UtilizationClampAndRecommendations(t *testing.T) {
	snap := singleStationSnapshot([]LineStep{{StationID: 1, DwellTime: intp(30)}})
	snap.Goal.PrimaryTarget = TargetHour
	snap.Goal.TargetPartsPerHour = 1 // trivially exceeded
	report, err := CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if report.HoistUtilization != 100 {
		t.Fatalf("utilization should clamp at 100, got %v", report.HoistUtilization)
	}
	if !report.MeetsProductionGoal {
		t.Fatal("goal should be met")
	}
	if report.Recommendations == nil || !strings.Contains(*report.Recommendations, "very high") {
		t.Fatalf("expected high-utilization advice, got %v", report.Recommendations)
	}

	snap.Goal.TargetPartsPerHour = 1e9 // unreachable
	report, err = CalculateThroughput(snap, nil)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if report.MeetsProductionGoal {
		t.Fatal("unreachable goal reported as met")
	}
	if report.Recommendations == nil ||
		!strings.Contains(*report.Recommendations, "increasing the number of hoists") ||
		!strings.Contains(*report.Recommendations, "reduce bottleneck") ||
		!strings.Contains(*report.Recommendations, "utilization is low") {
		t.Fatalf("expected goal-miss and low-utilization advice joined, got %v", report.Recommendations)
	}
	if !strings.Contains(*report.Recommendations, "; ") {
		t.Fatalf("advice should be joined with '; ': %v", report.Recommendations)
	}
}

func TestGoalMet_ZeroTargetNeverMet(t *testing.T) {
	for _, period := range []TargetPeriod{TargetHour, TargetDay, TargetWeek, TargetMonth, TargetYear} {
		goal := Goal{PrimaryTarget: period}
		if goalMet(goal, 1e9, 1e9, 1e9, 1e9, 1e9) {
			t.Fatalf("zero %s target reported as met", period)
		}
	}
}
