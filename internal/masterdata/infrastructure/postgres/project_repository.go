package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	masterdata "platerline-cloud/internal/masterdata/domain"
)

// ProjectRepository persists plating line projects.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository constructs a repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Get returns one project, or (nil, nil) when absent.
func (r *ProjectRepository) Get(ctx context.Context, projectID string) (*masterdata.Project, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("project repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT project_id, project_name, customer_id, equipment_type, process, substrate,
	spec_document_path, sketch_path, created_at, updated_at
FROM projects
WHERE project_id = $1
LIMIT 1`, projectID)
	return scanProject(row)
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]masterdata.Project, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("project repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT project_id, project_name, customer_id, equipment_type, process, substrate,
	spec_document_path, sketch_path, created_at, updated_at
FROM projects
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []masterdata.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		if project != nil {
			projects = append(projects, *project)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

// Create inserts a project.
func (r *ProjectRepository) Create(ctx context.Context, project *masterdata.Project) error {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	if project == nil {
		return errors.New("project repo: nil project")
	}
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
INSERT INTO projects (
	project_id, project_name, customer_id, equipment_type, process, substrate,
	spec_document_path, sketch_path, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		project.ProjectID, project.ProjectName, project.CustomerID, string(project.EquipmentType),
		project.Process, project.Substrate, nullString(project.SpecDocumentPath), nullString(project.SketchPath),
		project.CreatedAt, project.UpdatedAt)
	return err
}

// Update overwrites a project's editable fields.
func (r *ProjectRepository) Update(ctx context.Context, project *masterdata.Project) error {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	if project == nil {
		return errors.New("project repo: nil project")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE projects
SET project_name = $1, customer_id = $2, equipment_type = $3, process = $4, substrate = $5,
	updated_at = $6
WHERE project_id = $7`,
		project.ProjectName, project.CustomerID, string(project.EquipmentType), project.Process,
		project.Substrate, time.Now().UTC(), project.ProjectID)
	return err
}

// Delete removes a project and its dependent rows (FK cascade).
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1`, projectID)
	return err
}

// SetDocumentPath records where an uploaded spec or sketch was stored.
func (r *ProjectRepository) SetDocumentPath(ctx context.Context, projectID, kind, path string) error {
	if r == nil || r.db == nil {
		return errors.New("project repo: nil db")
	}
	var column string
	switch kind {
	case "spec":
		column = "spec_document_path"
	case "sketch":
		column = "sketch_path"
	default:
		return fmt.Errorf("project repo: unknown document kind %q", kind)
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE projects
SET `+column+` = $1, updated_at = $2
WHERE project_id = $3`, path, time.Now().UTC(), projectID)
	return err
}

func scanProject(row rowScanner) (*masterdata.Project, error) {
	var project masterdata.Project
	var equipmentType string
	var specPath sql.NullString
	var sketchPath sql.NullString
	err := row.Scan(
		&project.ProjectID,
		&project.ProjectName,
		&project.CustomerID,
		&equipmentType,
		&project.Process,
		&project.Substrate,
		&specPath,
		&sketchPath,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	project.EquipmentType = masterdata.EquipmentType(equipmentType)
	if specPath.Valid {
		project.SpecDocumentPath = specPath.String
	}
	if sketchPath.Valid {
		project.SketchPath = sketchPath.String
	}
	project.CreatedAt = project.CreatedAt.UTC()
	project.UpdatedAt = project.UpdatedAt.UTC()
	return &project, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}
