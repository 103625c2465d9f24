package main

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/middleware"
	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

const defaultLogLimit = 100

// handleListLogs returns the caller's most recent audit entries, newest
// first, joined with the acting user's display identity. The stored meta
// payload is decoded per entry; a malformed payload degrades to a
// placeholder instead of failing the listing.
func handleListLogs(db *gorm.DB) gin.HandlerFunc {
	type logActor struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	type logView struct {
		ID             uuid.UUID              `json:"id"`
		OrganisationID uuid.UUID              `json:"organisation_id"`
		UserID         *uuid.UUID             `json:"user_id,omitempty"`
		Action         string                 `json:"action"`
		Meta           map[string]interface{} `json:"meta,omitempty"`
		Timestamp      time.Time              `json:"timestamp"`
		User           *logActor              `json:"user,omitempty"`
	}

	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		limit := defaultLogLimit
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		var entries []models.LogEntry
		err = db.Where("organisation_id = ?", caller.OrganisationID).
			Preload("User").
			Order("timestamp DESC").
			Limit(limit).
			Find(&entries).Error
		if err != nil {
			logrus.WithError(err).Error("Failed to list logs")
			utils.InternalServerErrorResponse(c, "Failed to fetch logs")
			return
		}

		views := make([]logView, len(entries))
		for i, entry := range entries {
			views[i] = logView{
				ID:             entry.ID,
				OrganisationID: entry.OrganisationID,
				UserID:         entry.UserID,
				Action:         entry.Action,
				Meta:           entry.DecodedMeta(),
				Timestamp:      entry.Timestamp,
			}
			if entry.User != nil {
				views[i].User = &logActor{Name: entry.User.Name, Email: entry.User.Email}
			}
		}

		utils.OKResponse(c, "Logs retrieved successfully", views)
	}
}
