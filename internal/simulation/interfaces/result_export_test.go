package interfaces

import (
	"bytes"
	"testing"
	"time"

	simulation "platerline-cloud/internal/simulation/domain"
)

func sampleResult() *simulation.Result {
	bottleneck := "S2"
	description := "Station S2 (Zinc Plate) has the highest occupied time (310s per super-cycle)"
	recommendations := "Increase hoist count or reduce transfer times to improve throughput"
	return &simulation.Result{
		ID:             1,
		ProjectID:      "PL-001",
		Name:           "Baseline",
		SimulationDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Report: simulation.Report{
			PartsPerHour:          15.16,
			PartsPerDay:           121.26,
			PartsPerWeek:          606.32,
			PartsPerMonth:         2425.26,
			PartsPerYear:          29103.16,
			CycleTime:             190,
			TotalProcessTime:      390,
			TotalTransferTime:     80,
			TotalDripTime:         20,
			HoistCount:            2,
			HoistUtilization:      50,
			BottleneckStation:     &bottleneck,
			BottleneckDescription: &description,
			Recommendations:       &recommendations,
			RecipeResults: []simulation.RecipeBreakdown{
				{RecipeID: 10, RecipeName: "Standard Zinc", ProductionRatio: 3, CycleTime: 190, PartsPerHour: 11.37, PartsPerDay: 90.95},
				{RecipeID: 11, RecipeName: "Heavy Zinc", ProductionRatio: 1, CycleTime: 310, PartsPerHour: 3.79, PartsPerDay: 30.32},
			},
			StationUtilization: []simulation.StationUsage{
				{StationID: 1, StationNumber: "S1", ProcessName: "Degrease", OccupiedTime: 60, UtilizationPct: 19.35},
				{StationID: 2, StationNumber: "S2", ProcessName: "Zinc Plate", OccupiedTime: 310, UtilizationPct: 100},
			},
			TotalRatio:  4,
			RecipeCount: 2,
		},
	}
}

func TestBuildResultPDF(t *testing.T) {
	data, err := BuildResultPDF(sampleResult())
	if err != nil {
		t.Fatalf("BuildResultPDF: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty pdf output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a pdf: %q", data[:8])
	}
}

func TestBuildResultXLSX(t *testing.T) {
	data, err := BuildResultXLSX(sampleResult())
	if err != nil {
		t.Fatalf("BuildResultXLSX: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty xlsx output")
	}
	// xlsx is a zip archive
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("output does not look like a zip: %q", data[:4])
	}
}
