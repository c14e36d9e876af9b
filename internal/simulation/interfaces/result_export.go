package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	simulation "platerline-cloud/internal/simulation/domain"
)

// BuildResultPDF renders a simulation result as a PDF report.
func BuildResultPDF(result *simulation.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Simulation Result")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", result.ProjectID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", result.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", result.SimulationDate.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Parts/hour: %.2f", result.PartsPerHour))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Parts/day: %.2f", result.PartsPerDay))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Parts/week: %.2f", result.PartsPerWeek))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Parts/month: %.2f", result.PartsPerMonth))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Parts/year: %.2f", result.PartsPerYear))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Cycle time (s): %.2f", result.CycleTime))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Hoists: %d (utilization %.2f%%)", result.HoistCount, result.HoistUtilization))
	pdf.Ln(5)
	goalText := "no"
	if result.MeetsProductionGoal {
		goalText = "yes"
	}
	pdf.Cell(0, 6, fmt.Sprintf("Meets production goal: %s", goalText))
	pdf.Ln(5)
	if result.BottleneckDescription != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Bottleneck: %s", *result.BottleneckDescription))
		pdf.Ln(5)
	}
	if result.Recommendations != nil {
		pdf.MultiCell(0, 6, fmt.Sprintf("Recommendations: %s", *result.Recommendations), "", "L", false)
	}
	pdf.Ln(4)

	// Recipe table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Recipe", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Ratio", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Cycle (s)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Parts/hour", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Parts/day", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, recipe := range result.RecipeResults {
		pdf.CellFormat(60, 6, recipe.RecipeName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", recipe.ProductionRatio), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", recipe.CycleTime), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", recipe.PartsPerHour), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", recipe.PartsPerDay), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	// Station table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, "Station", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Process", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Occupied (s)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Utilization (%)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, station := range result.StationUtilization {
		pdf.CellFormat(40, 6, station.StationNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, station.ProcessName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", station.OccupiedTime), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", station.UtilizationPct), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildResultXLSX renders a simulation result as a workbook with summary,
// recipe, and station sheets.
func BuildResultXLSX(result *simulation.Result) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	recipeSheet := "recipes"
	stationSheet := "stations"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(recipeSheet)
	f.NewSheet(stationSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Simulation Result")
	_ = f.SetCellValue(summarySheet, "A3", "Project")
	_ = f.SetCellValue(summarySheet, "B3", result.ProjectID)
	_ = f.SetCellValue(summarySheet, "A4", "Run")
	_ = f.SetCellValue(summarySheet, "B4", result.Name)
	_ = f.SetCellValue(summarySheet, "A5", "Date")
	_ = f.SetCellValue(summarySheet, "B5", result.SimulationDate.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A6", "Parts/hour")
	_ = f.SetCellValue(summarySheet, "B6", result.PartsPerHour)
	_ = f.SetCellValue(summarySheet, "A7", "Parts/day")
	_ = f.SetCellValue(summarySheet, "B7", result.PartsPerDay)
	_ = f.SetCellValue(summarySheet, "A8", "Parts/week")
	_ = f.SetCellValue(summarySheet, "B8", result.PartsPerWeek)
	_ = f.SetCellValue(summarySheet, "A9", "Parts/month")
	_ = f.SetCellValue(summarySheet, "B9", result.PartsPerMonth)
	_ = f.SetCellValue(summarySheet, "A10", "Parts/year")
	_ = f.SetCellValue(summarySheet, "B10", result.PartsPerYear)
	_ = f.SetCellValue(summarySheet, "A11", "Cycle time (s)")
	_ = f.SetCellValue(summarySheet, "B11", result.CycleTime)
	_ = f.SetCellValue(summarySheet, "A12", "Hoist count")
	_ = f.SetCellValue(summarySheet, "B12", result.HoistCount)
	_ = f.SetCellValue(summarySheet, "A13", "Hoist utilization (%)")
	_ = f.SetCellValue(summarySheet, "B13", result.HoistUtilization)
	_ = f.SetCellValue(summarySheet, "A14", "Meets production goal")
	_ = f.SetCellValue(summarySheet, "B14", result.MeetsProductionGoal)
	if result.BottleneckStation != nil {
		_ = f.SetCellValue(summarySheet, "A15", "Bottleneck station")
		_ = f.SetCellValue(summarySheet, "B15", *result.BottleneckStation)
	}
	if result.Recommendations != nil {
		_ = f.SetCellValue(summarySheet, "A16", "Recommendations")
		_ = f.SetCellValue(summarySheet, "B16", *result.Recommendations)
	}

	_ = f.SetCellValue(recipeSheet, "A1", "Recipe")
	_ = f.SetCellValue(recipeSheet, "B1", "Ratio")
	_ = f.SetCellValue(recipeSheet, "C1", "Cycle (s)")
	_ = f.SetCellValue(recipeSheet, "D1", "Parts/hour")
	_ = f.SetCellValue(recipeSheet, "E1", "Parts/day")
	for i, recipe := range result.RecipeResults {
		row := i + 2
		_ = f.SetCellValue(recipeSheet, fmt.Sprintf("A%d", row), recipe.RecipeName)
		_ = f.SetCellValue(recipeSheet, fmt.Sprintf("B%d", row), recipe.ProductionRatio)
		_ = f.SetCellValue(recipeSheet, fmt.Sprintf("C%d", row), recipe.CycleTime)
		_ = f.SetCellValue(recipeSheet, fmt.Sprintf("D%d", row), recipe.PartsPerHour)
		_ = f.SetCellValue(recipeSheet, fmt.Sprintf("E%d", row), recipe.PartsPerDay)
	}

	_ = f.SetCellValue(stationSheet, "A1", "Station")
	_ = f.SetCellValue(stationSheet, "B1", "Process")
	_ = f.SetCellValue(stationSheet, "C1", "Occupied (s)")
	_ = f.SetCellValue(stationSheet, "D1", "Utilization (%)")
	for i, station := range result.StationUtilization {
		row := i + 2
		_ = f.SetCellValue(stationSheet, fmt.Sprintf("A%d", row), station.StationNumber)
		_ = f.SetCellValue(stationSheet, fmt.Sprintf("B%d", row), station.ProcessName)
		_ = f.SetCellValue(stationSheet, fmt.Sprintf("C%d", row), station.OccupiedTime)
		_ = f.SetCellValue(stationSheet, fmt.Sprintf("D%d", row), station.UtilizationPct)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
