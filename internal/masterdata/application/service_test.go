package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	masterdata "platerline-cloud/internal/masterdata/domain"
	"platerline-cloud/internal/masterdata/infrastructure/memory"
)

func newFixture(t *testing.T) (*CustomerService, *ProjectService, *StationService) {
	t.Helper()
	customerRepo := memory.NewCustomerRepository()
	projectRepo := memory.NewProjectRepository()
	stationRepo := memory.NewStationRepository()

	customers, err := NewCustomerService(customerRepo)
	if err != nil {
		t.Fatalf("customer service: %v", err)
	}
	projects, err := NewProjectService(projectRepo, customerRepo)
	if err != nil {
		t.Fatalf("project service: %v", err)
	}
	stations, err := NewStationService(stationRepo, projectRepo)
	if err != nil {
		t.Fatalf("station service: %v", err)
	}
	return customers, projects, stations
}

func seedCustomer(t *testing.T, customers *CustomerService) masterdata.Customer {
	t.Helper()
	customer := masterdata.Customer{CompanyName: "Acme Plating", PointOfContact: "Kim", Email: "kim@acme.example"}
	if err := customers.Create(context.Background(), &customer); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func TestCustomerCreateRejectsInvalidEmail(t *testing.T) {
	customers, _, _ := newFixture(t)
	customer := masterdata.Customer{CompanyName: "Acme", PointOfContact: "Kim", Email: "not-an-email"}
	if err := customers.Create(context.Background(), &customer); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestCustomerUpdateMissing(t *testing.T) {
	customers, _, _ := newFixture(t)
	customer := masterdata.Customer{ID: 7, CompanyName: "Ghost", PointOfContact: "No One", Email: "ghost@example.com"}
	if err := customers.Update(context.Background(), &customer); !errors.Is(err, masterdata.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProjectCreateRequiresCustomer(t *testing.T) {
	_, projects, _ := newFixture(t)
	project := masterdata.Project{
		ProjectID:     "PL-001",
		ProjectName:   "Zinc line",
		CustomerID:    42,
		EquipmentType: masterdata.EquipmentRack,
	}
	if err := projects.Create(context.Background(), &project); !errors.Is(err, masterdata.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProjectCreateRejectsDuplicateID(t *testing.T) {
	customers, projects, _ := newFixture(t)
	ctx := context.Background()
	customer := seedCustomer(t, customers)

	project := masterdata.Project{
		ProjectID:     "PL-001",
		ProjectName:   "Zinc line",
		CustomerID:    customer.ID,
		EquipmentType: masterdata.EquipmentRack,
	}
	if err := projects.Create(ctx, &project); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := project
	dup.ProjectName = "Second line"
	err := projects.Create(ctx, &dup)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestProjectGetJoinsCustomerName(t *testing.T) {
	customers, projects, _ := newFixture(t)
	ctx := context.Background()
	customer := seedCustomer(t, customers)

	project := masterdata.Project{
		ProjectID:     "PL-001",
		ProjectName:   "Zinc line",
		CustomerID:    customer.ID,
		EquipmentType: masterdata.EquipmentBarrel,
	}
	if err := projects.Create(ctx, &project); err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := projects.Get(ctx, "PL-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.CustomerName != "Acme Plating" {
		t.Fatalf("customer name not joined: %q", view.CustomerName)
	}

	list, err := projects.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].CustomerName != "Acme Plating" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestStationCreateRequiresProject(t *testing.T) {
	_, _, stations := newFixture(t)
	station := masterdata.Station{ProjectID: "PL-404", StationNumber: "S1", ProcessName: "Degrease"}
	if err := stations.Create(context.Background(), &station); !errors.Is(err, masterdata.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStationListOrderedByPosition(t *testing.T) {
	customers, projects, stations := newFixture(t)
	ctx := context.Background()
	customer := seedCustomer(t, customers)

	project := masterdata.Project{
		ProjectID:     "PL-001",
		ProjectName:   "Zinc line",
		CustomerID:    customer.ID,
		EquipmentType: masterdata.EquipmentRack,
	}
	if err := projects.Create(ctx, &project); err != nil {
		t.Fatalf("create project: %v", err)
	}

	for _, station := range []masterdata.Station{
		{ProjectID: "PL-001", StationNumber: "S3", ProcessName: "Rinse", PositionIndex: 3},
		{ProjectID: "PL-001", StationNumber: "S1", ProcessName: "Degrease", PositionIndex: 1},
		{ProjectID: "PL-001", StationNumber: "S2", ProcessName: "Zinc Plate", PositionIndex: 2},
	} {
		s := station
		if err := stations.Create(ctx, &s); err != nil {
			t.Fatalf("create station %s: %v", s.StationNumber, err)
		}
	}

	list, err := stations.ListByProject(ctx, "PL-001")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(list))
	}
	for i, want := range []string{"S1", "S2", "S3"} {
		if list[i].StationNumber != want {
			t.Fatalf("position %d: want %s, got %s", i, want, list[i].StationNumber)
		}
	}
}

func TestProjectDeleteMissing(t *testing.T) {
	_, projects, _ := newFixture(t)
	if err := projects.Delete(context.Background(), "PL-404"); !errors.Is(err, masterdata.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
