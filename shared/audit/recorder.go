package audit

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/models"
)

// Recorder appends audit entries to the tenant's log. Writes are
// best-effort: a failed insert is reported to the operational log and
// swallowed, so audit completeness never blocks the primary operation.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a recorder over the given database handle.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record writes one log entry with a server-assigned timestamp. The meta
// payload is serialized into a single column and decoded lazily on read.
func (r *Recorder) Record(orgID uuid.UUID, userID *uuid.UUID, action string, meta map[string]interface{}) {
	entry := models.LogEntry{
		OrganisationID: orgID,
		UserID:         userID,
		Action:         action,
	}

	if meta != nil {
		payload, err := json.Marshal(meta)
		if err != nil {
			logrus.WithError(err).WithField("action", action).Warn("Failed to encode audit metadata")
		} else {
			entry.Meta = string(payload)
		}
	}

	if err := r.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":          action,
			"organisation_id": orgID,
		}).Warn("Failed to write audit log entry")
	}
}
