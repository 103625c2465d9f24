package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/audit"
	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

// RegisterRequest represents the organisation registration request
type RegisterRequest struct {
	OrgName   string `json:"orgName" binding:"required"`
	AdminName string `json:"adminName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister creates an organisation and its admin user in one
// transaction and returns a fresh credential.
func handleRegister(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "All fields are required")
			return
		}

		// Email uniqueness is global across tenants
		var existing models.User
		err := db.Where("email = ?", req.Email).First(&existing).Error
		if err == nil {
			utils.ConflictResponse(c, "User with this email already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Failed to check for existing user")
			utils.InternalServerErrorResponse(c, "Server error during registration")
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Error("Failed to hash password")
			utils.InternalServerErrorResponse(c, "Server error during registration")
			return
		}

		var org models.Organisation
		var user models.User
		var token string

		// Organisation, admin user and credential are one logical unit:
		// if any step fails, nothing persists.
		err = db.Transaction(func(tx *gorm.DB) error {
			org = models.Organisation{Name: req.OrgName}
			if err := tx.Create(&org).Error; err != nil {
				return err
			}

			user = models.User{
				OrganisationID: org.ID,
				Email:          req.Email,
				PasswordHash:   string(passwordHash),
				Name:           req.AdminName,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			token, err = utils.IssueToken(user.ID, org.ID)
			return err
		})
		if err != nil {
			logrus.WithError(err).Error("Registration failed")
			utils.InternalServerErrorResponse(c, "Server error during registration")
			return
		}

		recorder.Record(org.ID, &user.ID, "organisation_created", map[string]interface{}{
			"org_id":   org.ID.String(),
			"org_name": org.Name,
		})
		recorder.Record(org.ID, &user.ID, "user_registered_admin", map[string]interface{}{
			"user_id": user.ID.String(),
			"email":   user.Email,
		})

		utils.CreatedResponse(c, "Organisation registered successfully", gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}

// handleLogin verifies credentials and issues a fresh token. Unknown
// email and wrong password produce the same response so the two cases
// cannot be told apart.
func handleLogin(db *gorm.DB, recorder *audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Email and password are required")
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.UnauthorizedResponse(c, "Invalid credentials")
			} else {
				logrus.WithError(err).Error("Failed to look up user for login")
				utils.InternalServerErrorResponse(c, "Server error during login")
			}
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			utils.UnauthorizedResponse(c, "Invalid credentials")
			return
		}

		token, err := utils.IssueToken(user.ID, user.OrganisationID)
		if err != nil {
			logrus.WithError(err).Error("Failed to issue token")
			utils.InternalServerErrorResponse(c, "Server error during login")
			return
		}

		recorder.Record(user.OrganisationID, &user.ID, "user_logged_in", map[string]interface{}{
			"user_id": user.ID.String(),
			"email":   user.Email,
		})

		utils.OKResponse(c, "Login successful", gin.H{
			"token": token,
			"user":  user.Public(),
		})
	}
}
