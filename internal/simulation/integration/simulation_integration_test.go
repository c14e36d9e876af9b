package integration_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	masterdata "platerline-cloud/internal/masterdata/domain"
	masterdatarepo "platerline-cloud/internal/masterdata/infrastructure/postgres"
	recipes "platerline-cloud/internal/recipes/domain"
	recipesrepo "platerline-cloud/internal/recipes/infrastructure/postgres"
	simulationapp "platerline-cloud/internal/simulation/application"
	simulationrepo "platerline-cloud/internal/simulation/infrastructure/postgres"
	simulationhttp "platerline-cloud/internal/simulation/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestSimulation_RunPersistListAndExport(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	ctx := context.Background()
	projectID := "IT-SIM-01"

	_, _ = db.ExecContext(ctx, "DELETE FROM projects WHERE project_id = $1", projectID)
	_, _ = db.ExecContext(ctx, "DELETE FROM customers WHERE company_name = $1", "Integration Plating Co")

	customerRepo := masterdatarepo.NewCustomerRepository(db)
	projectRepo := masterdatarepo.NewProjectRepository(db)
	stationRepo := masterdatarepo.NewStationRepository(db)
	recipeRepo := recipesrepo.NewRecipeRepository(db)
	parametersRepo := simulationrepo.NewParametersRepository(db)
	goalRepo := simulationrepo.NewGoalRepository(db)
	resultRepo := simulationrepo.NewResultRepository(db)

	customer := masterdata.Customer{CompanyName: "Integration Plating Co", PointOfContact: "QA", Email: "qa@example.com"}
	if err := customerRepo.Create(ctx, &customer); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	project := masterdata.Project{
		ProjectID:     projectID,
		ProjectName:   "Integration Zinc Line",
		CustomerID:    customer.ID,
		EquipmentType: masterdata.EquipmentRack,
		Process:       "zinc",
		Substrate:     "steel",
	}
	if err := projectRepo.Create(ctx, &project); err != nil {
		t.Fatalf("create project: %v", err)
	}

	stations := []masterdata.Station{
		{ProjectID: projectID, StationNumber: "S1", ProcessName: "Degrease", PositionIndex: 1},
		{ProjectID: projectID, StationNumber: "S2", ProcessName: "Zinc Plate", PositionIndex: 2},
		{ProjectID: projectID, StationNumber: "S3", ProcessName: "Rinse", PositionIndex: 3},
	}
	for i := range stations {
		if err := stationRepo.Create(ctx, &stations[i]); err != nil {
			t.Fatalf("create station %d: %v", i, err)
		}
	}

	dwell := func(v int) *int { return &v }
	recipe := recipes.Recipe{
		ProjectID:       projectID,
		Name:            "Standard Zinc",
		ProductionRatio: 1,
		IsActive:        true,
		Steps: []recipes.Step{
			{StationID: stations[0].ID, StepOrder: 1, DwellTime: dwell(60), DripTime: 5},
			{StationID: stations[1].ID, StepOrder: 2, DwellTime: dwell(300), DripTime: 10},
			{StationID: stations[2].ID, StepOrder: 3, DwellTime: dwell(30), DripTime: 5},
		},
	}
	if err := recipeRepo.Create(ctx, &recipe); err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	simulator, err := simulationapp.NewSimulator(projectRepo, stationRepo, recipeRepo, parametersRepo, goalRepo, resultRepo, simulationapp.Defaults{})
	if err != nil {
		t.Fatalf("simulator: %v", err)
	}

	// first access creates the default rows
	params, err := simulator.GetParameters(ctx, projectID)
	if err != nil {
		t.Fatalf("get parameters: %v", err)
	}
	if params.CreatedAt.IsZero() {
		t.Fatalf("parameters missing created_at")
	}
	again, err := simulator.GetParameters(ctx, projectID)
	if err != nil {
		t.Fatalf("get parameters again: %v", err)
	}
	if !again.CreatedAt.Equal(params.CreatedAt) {
		t.Fatalf("second read should reuse the stored row")
	}
	if _, err := simulator.GetGoal(ctx, projectID); err != nil {
		t.Fatalf("get goal: %v", err)
	}

	result, err := simulator.RunSimulation(ctx, projectID, "baseline")
	if err != nil {
		t.Fatalf("run simulation: %v", err)
	}
	if result.ID == 0 {
		t.Fatalf("result id not assigned")
	}
	if result.PartsPerHour <= 0 {
		t.Fatalf("expected positive throughput, got %v", result.PartsPerHour)
	}

	stored, err := simulator.GetResult(ctx, result.ID)
	if err != nil {
		t.Fatalf("get result: %v", err)
	}
	if stored.Name != "baseline" {
		t.Fatalf("stored name mismatch: %q", stored.Name)
	}
	if len(stored.RecipeResults) != 1 {
		t.Fatalf("expected 1 recipe breakdown, got %d", len(stored.RecipeResults))
	}
	if len(stored.StationUtilization) != 3 {
		t.Fatalf("expected 3 station rows, got %d", len(stored.StationUtilization))
	}
	if stored.PartsPerHour != result.PartsPerHour {
		t.Fatalf("stored throughput mismatch: %v vs %v", stored.PartsPerHour, result.PartsPerHour)
	}

	list, err := simulator.ListResults(ctx, projectID)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(list) != 1 || list[0].ID != result.ID {
		t.Fatalf("unexpected result list: %+v", list)
	}

	handler, err := simulationhttp.NewHandler(simulator, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/v1/simulation-results/", handler)

	id := strconv.FormatInt(result.ID, 10)
	pdfResp := httptest.NewRecorder()
	mux.ServeHTTP(pdfResp, httptest.NewRequest(http.MethodGet, "/api/v1/simulation-results/"+id+"/export.pdf", nil))
	if pdfResp.Code != http.StatusOK {
		t.Fatalf("pdf status %d", pdfResp.Code)
	}
	if pdfResp.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf content-type mismatch")
	}
	if len(pdfResp.Body.Bytes()) == 0 {
		t.Fatalf("pdf empty")
	}

	xlsxResp := httptest.NewRecorder()
	mux.ServeHTTP(xlsxResp, httptest.NewRequest(http.MethodGet, "/api/v1/simulation-results/"+id+"/export.xlsx", nil))
	if xlsxResp.Code != http.StatusOK {
		t.Fatalf("xlsx status %d", xlsxResp.Code)
	}
	if xlsxResp.Header().Get("Content-Type") != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("xlsx content-type mismatch")
	}
	if len(xlsxResp.Body.Bytes()) == 0 {
		t.Fatalf("xlsx empty")
	}
}

func applyMigrations(db *sql.DB) error {
	root := projectRoot()
	files := []string{
		filepath.Join(root, "migrations", "001_masterdata.sql"),
		filepath.Join(root, "migrations", "002_recipes.sql"),
		filepath.Join(root, "migrations", "003_simulation.sql"),
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
