package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organisation is the root of tenancy; every other record in the system
// belongs to exactly one organisation.
type Organisation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Users     []User     `json:"users,omitempty" gorm:"foreignKey:OrganisationID"`
	Employees []Employee `json:"employees,omitempty" gorm:"foreignKey:OrganisationID"`
	Teams     []Team     `json:"teams,omitempty" gorm:"foreignKey:OrganisationID"`
}

// TableName returns the table name for the Organisation model
func (Organisation) TableName() string {
	return "organisations"
}

func (o *Organisation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
