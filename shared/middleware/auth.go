package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

const userContextKey = "auth_user"

// AuthenticatedUser is the identity attached to the request context by
// RequireAuth. Every downstream query is scoped to OrganisationID.
type AuthenticatedUser struct {
	UserID         uuid.UUID
	OrganisationID uuid.UUID
	Email          string
	Name           string
}

// RequireAuth validates the bearer credential on every request: the
// signature and expiry must check out and the referenced user must still
// exist. Any failure is terminal for the request.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "Authorization token required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c, "Invalid authorization header format. Expected: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}
		orgID, err := claims.OrganisationUUID()
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.UnauthorizedResponse(c, "Invalid or expired token")
			} else {
				utils.InternalServerErrorResponse(c, "Failed to resolve user")
			}
			c.Abort()
			return
		}

		c.Set(userContextKey, &AuthenticatedUser{
			UserID:         user.ID,
			OrganisationID: orgID,
			Email:          user.Email,
			Name:           user.Name,
		})

		c.Next()
	}
}

// GetUserFromContext returns the identity stashed by RequireAuth.
func GetUserFromContext(c *gin.Context) (*AuthenticatedUser, error) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	user, ok := value.(*AuthenticatedUser)
	if !ok {
		return nil, fmt.Errorf("unexpected user context type %T", value)
	}
	return user, nil
}
