// Package memory provides in-memory masterdata repositories for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	masterdata "platerline-cloud/internal/masterdata/domain"
)

// CustomerRepository is an in-memory masterdata.CustomerRepository.
type CustomerRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]masterdata.Customer
}

// NewCustomerRepository constructs an empty repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{nextID: 1, byID: make(map[int64]masterdata.Customer)}
}

// Get returns one customer, or (nil, nil) when absent.
func (r *CustomerRepository) Get(ctx context.Context, id int64) (*masterdata.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := customer
	return &clone, nil
}

// List returns all customers ordered by company name.
func (r *CustomerRepository) List(ctx context.Context) ([]masterdata.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customers := make([]masterdata.Customer, 0, len(r.byID))
	for _, customer := range r.byID {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CompanyName < customers[j].CompanyName
	})
	return customers, nil
}

// Create assigns an id and stores the customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *masterdata.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer.ID = r.nextID
	r.nextID++
	r.byID[customer.ID] = *customer
	return nil
}

// Update overwrites a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *masterdata.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[customer.ID] = *customer
	return nil
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

// ProjectRepository is an in-memory masterdata.ProjectRepository.
type ProjectRepository struct {
	mu   sync.RWMutex
	byID map[string]masterdata.Project
}

// NewProjectRepository constructs an empty repository.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{byID: make(map[string]masterdata.Project)}
}

// Get returns one project, or (nil, nil) when absent.
func (r *ProjectRepository) Get(ctx context.Context, projectID string) (*masterdata.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	project, ok := r.byID[projectID]
	if !ok {
		return nil, nil
	}
	clone := project
	return &clone, nil
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]masterdata.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	projects := make([]masterdata.Project, 0, len(r.byID))
	for _, project := range r.byID {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ProjectID > projects[j].ProjectID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// Create stores a project.
func (r *ProjectRepository) Create(ctx context.Context, project *masterdata.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.byID[project.ProjectID] = *project
	return nil
}

// Update overwrites a project's editable fields.
func (r *ProjectRepository) Update(ctx context.Context, project *masterdata.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[project.ProjectID]
	if ok {
		project.CreatedAt = existing.CreatedAt
		project.SpecDocumentPath = existing.SpecDocumentPath
		project.SketchPath = existing.SketchPath
	}
	project.UpdatedAt = time.Now().UTC()
	r.byID[project.ProjectID] = *project
	return nil
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, projectID)
	return nil
}

// SetDocumentPath records an uploaded document path.
func (r *ProjectRepository) SetDocumentPath(ctx context.Context, projectID, kind, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.byID[projectID]
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, masterdata.ErrNotFound)
	}
	switch kind {
	case "spec":
		project.SpecDocumentPath = path
	case "sketch":
		project.SketchPath = path
	default:
		return fmt.Errorf("project repo: unknown document kind %q", kind)
	}
	project.UpdatedAt = time.Now().UTC()
	r.byID[projectID] = project
	return nil
}

// StationRepository is an in-memory masterdata.StationRepository.
type StationRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]masterdata.Station
}

// NewStationRepository constructs an empty repository.
func NewStationRepository() *StationRepository {
	return &StationRepository{nextID: 1, byID: make(map[int64]masterdata.Station)}
}

// Get returns one station, or (nil, nil) when absent.
func (r *StationRepository) Get(ctx context.Context, id int64) (*masterdata.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	station, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	clone := station
	return &clone, nil
}

// ListByProject returns a project's stations ordered by position index.
func (r *StationRepository) ListByProject(ctx context.Context, projectID string) ([]masterdata.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stations []masterdata.Station
	for _, station := range r.byID {
		if station.ProjectID == projectID {
			stations = append(stations, station)
		}
	}
	sort.Slice(stations, func(i, j int) bool {
		if stations[i].PositionIndex == stations[j].PositionIndex {
			return stations[i].ID < stations[j].ID
		}
		return stations[i].PositionIndex < stations[j].PositionIndex
	})
	return stations, nil
}

// Create assigns an id and stores the station.
func (r *StationRepository) Create(ctx context.Context, station *masterdata.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	station.ID = r.nextID
	r.nextID++
	r.byID[station.ID] = *station
	return nil
}

// Update overwrites a station.
func (r *StationRepository) Update(ctx context.Context, station *masterdata.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[station.ID] = *station
	return nil
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}
