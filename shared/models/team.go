package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team belongs to exactly one organisation and holds a many-to-many
// relation to employees through the assignments join table.
type Team struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganisationID uuid.UUID `json:"organisation_id" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	Employees []Employee `json:"employees,omitempty" gorm:"many2many:assignments"`
}

// TableName returns the table name for the Team model
func (Team) TableName() string {
	return "teams"
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
