package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment records that an employee is a member of a team. The
// (employee_id, team_id) pair is unique, so re-assigning an existing
// pair is a no-op at the storage layer. The row itself carries no
// organisation id: tenant consistency is enforced by the handlers, which
// only resolve employees and teams within the caller's organisation.
type Assignment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EmployeeID uuid.UUID `json:"employee_id" gorm:"type:uuid;not null;uniqueIndex:idx_assignments_employee_team"`
	TeamID     uuid.UUID `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_assignments_employee_team"`
	AssignedAt time.Time `json:"assigned_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for the Assignment model
func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
