package main

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pavitra93/go-hrms/shared/audit"
	"github.com/pavitra93/go-hrms/shared/middleware"
	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

// CreateTeamRequest represents the create team request
type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateTeamRequest represents the update team request
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r *UpdateTeamRequest) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.Name != nil {
		changes["name"] = *r.Name
	}
	if r.Description != nil {
		changes["description"] = *r.Description
	}
	return changes
}

// AssignRequest carries the employees to add to a team. The singular
// employee_id form is kept for older clients.
type AssignRequest struct {
	EmployeeID  *uuid.UUID  `json:"employee_id"`
	EmployeeIDs []uuid.UUID `json:"employee_ids"`
}

// UnassignRequest removes one employee from a team
type UnassignRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
}

// resolveTeam looks up a team by id within the caller's organisation. The
// merged miss category never reveals whether the id exists in another
// tenant.
func resolveTeam(db *gorm.DB, c *gin.Context, orgID uuid.UUID) (*models.Team, bool) {
	teamID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, "Team not found or unauthorized")
		return nil, false
	}

	var team models.Team
	err = db.Where("id = ? AND organisation_id = ?", teamID, orgID).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "Team not found or unauthorized")
		} else {
			logrus.WithError(err).Error("Failed to fetch team")
			utils.InternalServerErrorResponse(c, "Failed to fetch team")
		}
		return nil, false
	}
	return &team, true
}

// handleListTeams returns the caller's teams with their members
func handleListTeams(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var teams []models.Team
		if err := db.Where("organisation_id = ?", caller.OrganisationID).Preload("Employees").Find(&teams).Error; err != nil {
			logrus.WithError(err).Error("Failed to list teams")
			utils.InternalServerErrorResponse(c, "Failed to fetch teams")
			return
		}

		utils.OKResponse(c, "Teams retrieved successfully", teams)
	}
}

// handleCreateTeam creates a team in the caller's organisation
func handleCreateTeam(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var req CreateTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Team name is required")
			return
		}

		team := models.Team{
			OrganisationID: caller.OrganisationID,
			Name:           req.Name,
			Description:    req.Description,
		}

		if err := db.Create(&team).Error; err != nil {
			logrus.WithError(err).Error("Failed to create team")
			utils.InternalServerErrorResponse(c, "Failed to create team")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "team_created", map[string]interface{}{
			"team_id": team.ID.String(),
			"name":    team.Name,
		})

		utils.CreatedResponse(c, "Team created successfully", team)
	}
}

// handleGetTeam fetches one team with its members
func handleGetTeam(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		teamID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.NotFoundResponse(c, "Team not found or unauthorized")
			return
		}

		var team models.Team
		err = db.Where("id = ? AND organisation_id = ?", teamID, caller.OrganisationID).
			Preload("Employees").First(&team).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Team not found or unauthorized")
			} else {
				logrus.WithError(err).Error("Failed to fetch team")
				utils.InternalServerErrorResponse(c, "Failed to fetch team")
			}
			return
		}

		utils.OKResponse(c, "Team retrieved successfully", team)
	}
}

// handleUpdateTeam applies a partial update to a tenant-scoped team
func handleUpdateTeam(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		team, ok := resolveTeam(db, c, caller.OrganisationID)
		if !ok {
			return
		}

		var req UpdateTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.Name != nil {
			team.Name = *req.Name
		}
		if req.Description != nil {
			team.Description = *req.Description
		}

		if err := db.Save(team).Error; err != nil {
			logrus.WithError(err).Error("Failed to update team")
			utils.InternalServerErrorResponse(c, "Failed to update team")
			return
		}

		var updated models.Team
		if err := db.Where("id = ?", team.ID).Preload("Employees").First(&updated).Error; err != nil {
			logrus.WithError(err).Error("Failed to reload updated team")
			utils.InternalServerErrorResponse(c, "Failed to update team")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "team_updated", map[string]interface{}{
			"team_id": updated.ID.String(),
			"name":    updated.Name,
			"changes": req.changes(),
		})

		utils.OKResponse(c, "Team updated successfully", updated)
	}
}

// handleDeleteTeam hard-deletes a team. Its assignment rows go with it
// in the same transaction so the join table never holds dangling
// references.
func handleDeleteTeam(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		team, ok := resolveTeam(db, c, caller.OrganisationID)
		if !ok {
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("team_id = ?", team.ID).Delete(&models.Assignment{}).Error; err != nil {
				return err
			}
			return tx.Delete(team).Error
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to delete team")
			utils.InternalServerErrorResponse(c, "Failed to delete team")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "team_deleted", map[string]interface{}{
			"team_id": team.ID.String(),
			"name":    team.Name,
		})

		utils.NoContentResponse(c)
	}
}

// handleAssignEmployees adds one or more employees to a team. Every
// requested employee must resolve within the caller's organisation
// before anything is written; the batch then goes in as one insert that
// skips pairs which already exist.
func handleAssignEmployees(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var req AssignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		ids := req.EmployeeIDs
		if len(ids) == 0 && req.EmployeeID != nil {
			ids = []uuid.UUID{*req.EmployeeID}
		}
		if len(ids) == 0 {
			utils.BadRequestResponse(c, "Employee ID(s) are required for assignment")
			return
		}

		team, ok := resolveTeam(db, c, caller.OrganisationID)
		if !ok {
			return
		}

		var employees []models.Employee
		if err := db.Where("id IN ? AND organisation_id = ?", ids, caller.OrganisationID).Find(&employees).Error; err != nil {
			logrus.WithError(err).Error("Failed to resolve employees for assignment")
			utils.InternalServerErrorResponse(c, "Server error during assignment")
			return
		}

		// All-or-nothing precondition: nothing is written unless every
		// requested employee exists in this organisation.
		if len(employees) != len(ids) {
			utils.NotFoundResponse(c, "One or more employees not found or unauthorized")
			return
		}

		assignments := make([]models.Assignment, 0, len(employees))
		for _, employee := range employees {
			assignments = append(assignments, models.Assignment{
				EmployeeID: employee.ID,
				TeamID:     team.ID,
			})
		}

		// One batched insert; existing (employee, team) pairs are skipped
		// via the unique index, so re-assignment is idempotent.
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "team_id"}},
			DoNothing: true,
		}).Create(&assignments)
		if result.Error != nil {
			logrus.WithError(result.Error).Error("Failed to create assignments")
			utils.InternalServerErrorResponse(c, "Server error during assignment")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "employee_assigned_to_team", map[string]interface{}{
			"team_id":      team.ID.String(),
			"team_name":    team.Name,
			"employee_ids": ids,
		})

		utils.OKResponse(c, fmt.Sprintf("%d employee(s) assigned successfully", result.RowsAffected), gin.H{
			"assigned": result.RowsAffected,
		})
	}
}

// handleUnassignEmployee removes one employee from a team. Unlike
// assign, this is strict: removing a pair that does not exist is an
// error.
func handleUnassignEmployee(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var req UnassignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Employee ID is required for unassignment")
			return
		}

		team, ok := resolveTeam(db, c, caller.OrganisationID)
		if !ok {
			return
		}

		result := db.Where("team_id = ? AND employee_id = ?", team.ID, req.EmployeeID).
			Delete(&models.Assignment{})
		if result.Error != nil {
			logrus.WithError(result.Error).Error("Failed to delete assignment")
			utils.InternalServerErrorResponse(c, "Server error during unassignment")
			return
		}
		if result.RowsAffected == 0 {
			utils.NotFoundResponse(c, "Assignment not found")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "employee_unassigned_from_team", map[string]interface{}{
			"team_id":     team.ID.String(),
			"team_name":   team.Name,
			"employee_id": req.EmployeeID.String(),
		})

		utils.NoContentResponse(c)
	}
}

// handleTeamCount returns the size of the caller's team partition
func handleTeamCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var count int64
		if err := db.Model(&models.Team{}).Where("organisation_id = ?", caller.OrganisationID).Count(&count).Error; err != nil {
			logrus.WithError(err).Error("Failed to count teams")
			utils.InternalServerErrorResponse(c, "Failed to fetch team count")
			return
		}

		utils.OKResponse(c, "Team count retrieved successfully", gin.H{"count": count})
	}
}
