package application

import (
	"context"
	"errors"
	"fmt"

	masterdata "platerline-cloud/internal/masterdata/domain"
)

// CustomerService manages customers.
type CustomerService struct {
	customers masterdata.CustomerRepository
}

// NewCustomerService constructs a customer service.
func NewCustomerService(customers masterdata.CustomerRepository) (*CustomerService, error) {
	if customers == nil {
		return nil, errors.New("customer service: nil repository")
	}
	return &CustomerService{customers: customers}, nil
}

// List returns all customers.
func (s *CustomerService) List(ctx context.Context) ([]masterdata.Customer, error) {
	return s.customers.List(ctx)
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*masterdata.Customer, error) {
	customer, err := s.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %d: %w", id, masterdata.ErrNotFound)
	}
	return customer, nil
}

// Create validates and stores a new customer.
func (s *CustomerService) Create(ctx context.Context, customer *masterdata.Customer) error {
	if customer == nil {
		return errors.New("customer service: nil customer")
	}
	if err := customer.Validate(); err != nil {
		return err
	}
	return s.customers.Create(ctx, customer)
}

// Update validates and stores an existing customer.
func (s *CustomerService) Update(ctx context.Context, customer *masterdata.Customer) error {
	if customer == nil {
		return errors.New("customer service: nil customer")
	}
	if err := customer.Validate(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, customer.ID); err != nil {
		return err
	}
	return s.customers.Update(ctx, customer)
}

// Delete removes a customer.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.customers.Delete(ctx, id)
}

// ProjectView is a project read model with the customer name joined in.
type ProjectView struct {
	masterdata.Project
	CustomerName string
}

// ProjectService manages plating line projects.
type ProjectService struct {
	projects  masterdata.ProjectRepository
	customers masterdata.CustomerRepository
}

// NewProjectService constructs a project service.
func NewProjectService(projects masterdata.ProjectRepository, customers masterdata.CustomerRepository) (*ProjectService, error) {
	if projects == nil {
		return nil, errors.New("project service: nil project repository")
	}
	if customers == nil {
		return nil, errors.New("project service: nil customer repository")
	}
	return &ProjectService{projects: projects, customers: customers}, nil
}

// List returns all projects with customer names.
func (s *ProjectService) List(ctx context.Context) ([]ProjectView, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProjectView, 0, len(projects))
	names := make(map[int64]string)
	for _, project := range projects {
		name, ok := names[project.CustomerID]
		if !ok {
			customer, err := s.customers.Get(ctx, project.CustomerID)
			if err != nil {
				return nil, err
			}
			if customer != nil {
				name = customer.CompanyName
			}
			names[project.CustomerID] = name
		}
		views = append(views, ProjectView{Project: project, CustomerName: name})
	}
	return views, nil
}

// Get returns one project with its customer name.
func (s *ProjectService) Get(ctx context.Context, projectID string) (*ProjectView, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	view := ProjectView{Project: *project}
	customer, err := s.customers.Get(ctx, project.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		view.CustomerName = customer.CompanyName
	}
	return &view, nil
}

// Create validates and stores a new project. The customer must exist and the
// project id must be free.
func (s *ProjectService) Create(ctx context.Context, project *masterdata.Project) error {
	if project == nil {
		return errors.New("project service: nil project")
	}
	if err := project.Validate(); err != nil {
		return err
	}
	customer, err := s.customers.Get(ctx, project.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("customer %d: %w", project.CustomerID, masterdata.ErrNotFound)
	}
	existing, err := s.projects.Get(ctx, project.ProjectID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("project %s already exists", project.ProjectID)
	}
	return s.projects.Create(ctx, project)
}

// Update validates and stores an existing project.
func (s *ProjectService) Update(ctx context.Context, project *masterdata.Project) error {
	if project == nil {
		return errors.New("project service: nil project")
	}
	if err := project.Validate(); err != nil {
		return err
	}
	existing, err := s.projects.Get(ctx, project.ProjectID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("project %s: %w", project.ProjectID, masterdata.ErrNotFound)
	}
	return s.projects.Update(ctx, project)
}

// Delete removes a project.
func (s *ProjectService) Delete(ctx context.Context, projectID string) error {
	existing, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	return s.projects.Delete(ctx, projectID)
}

// SetDocumentPath records the stored path of an uploaded project document.
func (s *ProjectService) SetDocumentPath(ctx context.Context, projectID, kind, path string) error {
	existing, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	return s.projects.SetDocumentPath(ctx, projectID, kind, path)
}

// StationService manages stations on a project's line.
type StationService struct {
	stations masterdata.StationRepository
	projects masterdata.ProjectRepository
}

// NewStationService constructs a station service.
func NewStationService(stations masterdata.StationRepository, projects masterdata.ProjectRepository) (*StationService, error) {
	if stations == nil {
		return nil, errors.New("station service: nil station repository")
	}
	if projects == nil {
		return nil, errors.New("station service: nil project repository")
	}
	return &StationService{stations: stations, projects: projects}, nil
}

// ListByProject returns a project's stations in line order.
func (s *StationService) ListByProject(ctx context.Context, projectID string) ([]masterdata.Station, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.stations.ListByProject(ctx, projectID)
}

// Create validates and stores a new station.
func (s *StationService) Create(ctx context.Context, station *masterdata.Station) error {
	if station == nil {
		return errors.New("station service: nil station")
	}
	if err := station.Validate(); err != nil {
		return err
	}
	if err := s.requireProject(ctx, station.ProjectID); err != nil {
		return err
	}
	return s.stations.Create(ctx, station)
}

// Update validates and stores an existing station.
func (s *StationService) Update(ctx context.Context, station *masterdata.Station) error {
	if station == nil {
		return errors.New("station service: nil station")
	}
	if err := station.Validate(); err != nil {
		return err
	}
	existing, err := s.stations.Get(ctx, station.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("station %d: %w", station.ID, masterdata.ErrNotFound)
	}
	return s.stations.Update(ctx, station)
}

// Delete removes a station.
func (s *StationService) Delete(ctx context.Context, id int64) error {
	existing, err := s.stations.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("station %d: %w", id, masterdata.ErrNotFound)
	}
	return s.stations.Delete(ctx, id)
}

func (s *StationService) requireProject(ctx context.Context, projectID string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	return nil
}
