package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pavitra93/go-hrms/shared/models"
	"github.com/pavitra93/go-hrms/shared/utils"
)

func setupAuthTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Organisation{}, &models.User{}))

	router := gin.New()
	router.GET("/protected", RequireAuth(db), func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{
			"email":  user.Email,
			"name":   user.Name,
			"org_id": user.OrganisationID,
		})
	})
	return db, router
}

func createTestUser(t *testing.T, db *gorm.DB) (models.Organisation, models.User) {
	t.Helper()
	org := models.Organisation{Name: "Acme"}
	require.NoError(t, db.Create(&org).Error)
	user := models.User{
		OrganisationID: org.ID,
		Email:          "admin@acme.com",
		PasswordHash:   "irrelevant",
		Name:           "Acme Admin",
	}
	require.NoError(t, db.Create(&user).Error)
	return org, user
}

func probe(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuthValidToken(t *testing.T) {
	db, router := setupAuthTest(t)
	org, user := createTestUser(t, db)

	token, err := utils.IssueToken(user.ID, org.ID)
	require.NoError(t, err)

	rec := probe(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@acme.com")
	assert.Contains(t, rec.Body.String(), org.ID.String())
}

func TestRequireAuthMissingHeader(t *testing.T) {
	_, router := setupAuthTest(t)

	rec := probe(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthNonBearerHeader(t *testing.T) {
	_, router := setupAuthTest(t)

	rec := probe(router, "Basic dXNlcjpwYXNz")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMalformedToken(t *testing.T) {
	_, router := setupAuthTest(t)

	rec := probe(router, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	db, router := setupAuthTest(t)
	org, user := createTestUser(t, db)

	claims := utils.Claims{
		UserID:         user.ID.String(),
		OrganisationID: org.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-9 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rec := probe(router, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A token that verifies but points at a deleted user is rejected: the
// referenced user must still exist.
func TestRequireAuthDeletedUser(t *testing.T) {
	db, router := setupAuthTest(t)
	org, user := createTestUser(t, db)

	token, err := utils.IssueToken(user.ID, org.ID)
	require.NoError(t, err)
	require.NoError(t, db.Delete(&user).Error)

	rec := probe(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserFromContextWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetUserFromContext(c)
	assert.Error(t, err)
}
