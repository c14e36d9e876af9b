package masterdata

import (
	"context"
	"errors"
	"time"
)

// EquipmentType classifies how parts are carried through the line.
type EquipmentType string

const (
	EquipmentRack       EquipmentType = "rack"
	EquipmentBarrel     EquipmentType = "barrel"
	EquipmentReelToReel EquipmentType = "reel_to_reel"
	EquipmentRollToRoll EquipmentType = "roll_to_roll"
	EquipmentOther      EquipmentType = "other"
)

// Valid returns true when the equipment type is supported.
func (t EquipmentType) Valid() bool {
	switch t {
	case EquipmentRack, EquipmentBarrel, EquipmentReelToReel, EquipmentRollToRoll, EquipmentOther, "":
		return true
	}
	return false
}

// EquipmentTypes lists the selectable equipment types.
func EquipmentTypes() []EquipmentType {
	return []EquipmentType{EquipmentRack, EquipmentBarrel, EquipmentReelToReel, EquipmentRollToRoll, EquipmentOther}
}

// Project represents one plating line design project.
type Project struct {
	ProjectID        string
	ProjectName      string
	CustomerID       int64
	EquipmentType    EquipmentType
	Process          string
	Substrate        string
	SpecDocumentPath string
	SketchPath       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks project invariants.
func (p Project) Validate() error {
	if p.ProjectID == "" {
		return errors.New("project: empty project id")
	}
	if len(p.ProjectID) > 10 {
		return errors.New("project: project id longer than 10 characters")
	}
	if p.ProjectName == "" {
		return errors.New("project: empty project name")
	}
	if p.CustomerID <= 0 {
		return errors.New("project: missing customer")
	}
	if !p.EquipmentType.Valid() {
		return errors.New("project: invalid equipment type")
	}
	return nil
}

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	Get(ctx context.Context, projectID string) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, projectID string) error
	SetDocumentPath(ctx context.Context, projectID, kind, path string) error
}
