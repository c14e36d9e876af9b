package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "platerline-cloud/internal/api/http"
	"platerline-cloud/internal/audit"
	"platerline-cloud/internal/auth"
	"platerline-cloud/internal/documents"
	masterdataapp "platerline-cloud/internal/masterdata/application"
	masterdatarepo "platerline-cloud/internal/masterdata/infrastructure/postgres"
	masterdatahttp "platerline-cloud/internal/masterdata/interfaces/http"
	"platerline-cloud/internal/observability/metrics"
	recipesapp "platerline-cloud/internal/recipes/application"
	recipesrepo "platerline-cloud/internal/recipes/infrastructure/postgres"
	recipeshttp "platerline-cloud/internal/recipes/interfaces/http"
	simulationapp "platerline-cloud/internal/simulation/application"
	simulationrepo "platerline-cloud/internal/simulation/infrastructure/postgres"
	simulationhttp "platerline-cloud/internal/simulation/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	customerRepo := masterdatarepo.NewCustomerRepository(db)
	projectRepo := masterdatarepo.NewProjectRepository(db)
	stationRepo := masterdatarepo.NewStationRepository(db)
	recipeRepo := recipesrepo.NewRecipeRepository(db)
	parametersRepo := simulationrepo.NewParametersRepository(db)
	goalRepo := simulationrepo.NewGoalRepository(db)
	resultRepo := simulationrepo.NewResultRepository(db)

	customerService, err := masterdataapp.NewCustomerService(customerRepo)
	if err != nil {
		logger.Fatalf("customer service error: %v", err)
	}
	projectService, err := masterdataapp.NewProjectService(projectRepo, customerRepo)
	if err != nil {
		logger.Fatalf("project service error: %v", err)
	}
	stationService, err := masterdataapp.NewStationService(stationRepo, projectRepo)
	if err != nil {
		logger.Fatalf("station service error: %v", err)
	}
	recipeService, err := recipesapp.NewService(recipeRepo, projectRepo, stationRepo)
	if err != nil {
		logger.Fatalf("recipe service error: %v", err)
	}

	defaults, err := simulationapp.LoadDefaults(cfg.SimulationDefaults)
	if err != nil {
		logger.Fatalf("simulation defaults error: %v", err)
	}
	simulator, err := simulationapp.NewSimulator(projectRepo, stationRepo, recipeRepo, parametersRepo, goalRepo, resultRepo, defaults)
	if err != nil {
		logger.Fatalf("simulator error: %v", err)
	}

	storage, err := documents.NewStorage(cfg.StorageRoot)
	if err != nil {
		logger.Fatalf("document storage error: %v", err)
	}

	customerHandler, err := masterdatahttp.NewCustomerHandler(customerService, auditRepo)
	if err != nil {
		logger.Fatalf("customer handler error: %v", err)
	}
	projectHandler, err := masterdatahttp.NewProjectHandler(projectService, auditRepo)
	if err != nil {
		logger.Fatalf("project handler error: %v", err)
	}
	stationHandler, err := masterdatahttp.NewStationHandler(stationService, auditRepo)
	if err != nil {
		logger.Fatalf("station handler error: %v", err)
	}
	documentHandler, err := masterdatahttp.NewDocumentHandler(projectService, storage, auditRepo)
	if err != nil {
		logger.Fatalf("document handler error: %v", err)
	}
	recipeHandler, err := recipeshttp.NewHandler(recipeService, auditRepo)
	if err != nil {
		logger.Fatalf("recipe handler error: %v", err)
	}
	simulationHandler, err := simulationhttp.NewHandler(simulator, auditRepo)
	if err != nil {
		logger.Fatalf("simulation handler error: %v", err)
	}
	projectRouter, err := apihttp.NewProjectRouter(projectHandler, stationHandler, documentHandler, recipeHandler, simulationHandler)
	if err != nil {
		logger.Fatalf("project router error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/customers", customerHandler)
	mux.Handle("/api/v1/customers/", customerHandler)
	mux.Handle("/api/v1/projects", projectRouter)
	mux.Handle("/api/v1/projects/", projectRouter)
	mux.Handle("/api/v1/recipes/", recipeHandler)
	mux.Handle("/api/v1/simulation-results/", simulationHandler)
	mux.Handle("/api/v1/equipment-types", masterdatahttp.EquipmentTypesHandler{})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL        string
	HTTPAddr           string
	StorageRoot        string
	SimulationDefaults string
	JWTSecret          string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		StorageRoot:        getenvDefault("STORAGE_ROOT", "./storage"),
		SimulationDefaults: getenvDefault("SIMULATION_DEFAULTS", ""),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
