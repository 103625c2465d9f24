package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee belongs to exactly one organisation. Contact fields are
// optional.
type Employee struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganisationID uuid.UUID `json:"organisation_id" gorm:"type:uuid;not null;index"`
	FirstName      string    `json:"first_name" gorm:"not null"`
	LastName       string    `json:"last_name" gorm:"not null"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Teams []Team `json:"teams,omitempty" gorm:"many2many:assignments"`
}

// TableName returns the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// FullName is the human-readable identifier used in audit entries.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
