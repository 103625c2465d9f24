package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/audit"
	"github.com/pavitra93/go-hrms/shared/middleware"
	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

// CreateEmployeeRequest represents the create employee request
type CreateEmployeeRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// UpdateEmployeeRequest represents the update employee request. Only
// supplied fields are applied; unknown fields are rejected at decode.
type UpdateEmployeeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// changes reconstructs the caller-supplied patch for the audit entry.
func (r *UpdateEmployeeRequest) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if r.FirstName != nil {
		changes["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		changes["last_name"] = *r.LastName
	}
	if r.Email != nil {
		changes["email"] = *r.Email
	}
	if r.Phone != nil {
		changes["phone"] = *r.Phone
	}
	return changes
}

// handleListEmployees returns the caller's employees with their teams
func handleListEmployees(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var employees []models.Employee
		if err := db.Where("organisation_id = ?", caller.OrganisationID).Preload("Teams").Find(&employees).Error; err != nil {
			logrus.WithError(err).Error("Failed to list employees")
			utils.InternalServerErrorResponse(c, "Failed to fetch employees")
			return
		}

		utils.OKResponse(c, "Employees retrieved successfully", employees)
	}
}

// handleCreateEmployee creates an employee in the caller's organisation.
// The organisation id always comes from the request context, never from
// the payload.
func handleCreateEmployee(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var req CreateEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "First and last name are required")
			return
		}

		employee := models.Employee{
			OrganisationID: caller.OrganisationID,
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			Email:          req.Email,
			Phone:          req.Phone,
		}

		if err := db.Create(&employee).Error; err != nil {
			logrus.WithError(err).Error("Failed to create employee")
			utils.InternalServerErrorResponse(c, "Failed to create employee")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "employee_created", map[string]interface{}{
			"employee_id": employee.ID.String(),
			"name":        employee.FullName(),
		})

		utils.CreatedResponse(c, "Employee created successfully", employee)
	}
}

// handleGetEmployee fetches one employee by id within the caller's
// organisation. A miss never reveals whether the id exists elsewhere.
func handleGetEmployee(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		employeeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.NotFoundResponse(c, "Employee not found or unauthorized")
			return
		}

		var employee models.Employee
		err = db.Where("id = ? AND organisation_id = ?", employeeID, caller.OrganisationID).
			Preload("Teams").First(&employee).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Employee not found or unauthorized")
			} else {
				logrus.WithError(err).Error("Failed to fetch employee")
				utils.InternalServerErrorResponse(c, "Failed to fetch employee")
			}
			return
		}

		utils.OKResponse(c, "Employee retrieved successfully", employee)
	}
}

// handleUpdateEmployee applies a partial update to a tenant-scoped
// employee row and returns it with associations re-fetched.
func handleUpdateEmployee(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		employeeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.NotFoundResponse(c, "Employee not found or unauthorized")
			return
		}

		var employee models.Employee
		err = db.Where("id = ? AND organisation_id = ?", employeeID, caller.OrganisationID).
			First(&employee).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Employee not found or unauthorized")
			} else {
				logrus.WithError(err).Error("Failed to fetch employee for update")
				utils.InternalServerErrorResponse(c, "Failed to update employee")
			}
			return
		}

		var req UpdateEmployeeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request format")
			return
		}

		if req.FirstName != nil {
			employee.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			employee.LastName = *req.LastName
		}
		if req.Email != nil {
			employee.Email = *req.Email
		}
		if req.Phone != nil {
			employee.Phone = *req.Phone
		}

		if err := db.Save(&employee).Error; err != nil {
			logrus.WithError(err).Error("Failed to update employee")
			utils.InternalServerErrorResponse(c, "Failed to update employee")
			return
		}

		var updated models.Employee
		if err := db.Where("id = ?", employee.ID).Preload("Teams").First(&updated).Error; err != nil {
			logrus.WithError(err).Error("Failed to reload updated employee")
			utils.InternalServerErrorResponse(c, "Failed to update employee")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "employee_updated", map[string]interface{}{
			"employee_id": updated.ID.String(),
			"name":        updated.FullName(),
			"changes":     req.changes(),
		})

		utils.OKResponse(c, "Employee updated successfully", updated)
	}
}

// handleDeleteEmployee hard-deletes a tenant-scoped employee along with
// its assignment rows.
func handleDeleteEmployee(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		employeeID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			utils.NotFoundResponse(c, "Employee not found or unauthorized")
			return
		}

		var employee models.Employee
		err = db.Where("id = ? AND organisation_id = ?", employeeID, caller.OrganisationID).
			First(&employee).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFoundResponse(c, "Employee not found or unauthorized")
			} else {
				logrus.WithError(err).Error("Failed to fetch employee for deletion")
				utils.InternalServerErrorResponse(c, "Failed to delete employee")
			}
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("employee_id = ?", employee.ID).Delete(&models.Assignment{}).Error; err != nil {
				return err
			}
			return tx.Delete(&employee).Error
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to delete employee")
			utils.InternalServerErrorResponse(c, "Failed to delete employee")
			return
		}

		recorder.Record(caller.OrganisationID, &caller.UserID, "employee_deleted", map[string]interface{}{
			"employee_id": employee.ID.String(),
			"name":        employee.FullName(),
		})

		utils.NoContentResponse(c)
	}
}

// handleEmployeeCount returns the size of the caller's employee partition
func handleEmployeeCount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := middleware.GetUserFromContext(c)
		if err != nil {
			utils.UnauthorizedResponse(c, "User info not found")
			return
		}

		var count int64
		if err := db.Model(&models.Employee{}).Where("organisation_id = ?", caller.OrganisationID).Count(&count).Error; err != nil {
			logrus.WithError(err).Error("Failed to count employees")
			utils.InternalServerErrorResponse(c, "Failed to fetch employee count")
			return
		}

		utils.OKResponse(c, "Employee count retrieved successfully", gin.H{"count": count})
	}
}
