package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogEntry is an append-only audit record of a mutating action. Meta is
// a free-form payload serialized into a single column; it is decoded
// lazily for display and never updated after insert. UserID is nullable
// so an entry survives even when the actor cannot be resolved.
type LogEntry struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OrganisationID uuid.UUID  `json:"organisation_id" gorm:"type:uuid;not null;index"`
	UserID         *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid"`
	Action         string     `json:"action" gorm:"type:varchar(255);not null"`
	Meta           string     `json:"-" gorm:"type:jsonb"`
	Timestamp      time.Time  `json:"timestamp" gorm:"autoCreateTime;index"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName returns the table name for the LogEntry model
func (LogEntry) TableName() string {
	return "logs"
}

func (l *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// DecodedMeta unmarshals the stored meta payload. Malformed payloads
// degrade to a diagnostic placeholder instead of an error so a single
// bad row cannot break a log listing.
func (l *LogEntry) DecodedMeta() map[string]interface{} {
	if l.Meta == "" {
		return nil
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(l.Meta), &meta); err != nil {
		return map[string]interface{}{"error": "failed to parse metadata"}
	}
	return meta
}
