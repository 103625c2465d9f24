package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pavitra93/go-hrms/shared/audit"
	"github.com/pavitra93/go-hrms/shared/config"
	"github.com/pavitra93/go-hrms/shared/models"
)

// apiEnvelope mirrors utils.APIResponse with the data payload kept raw
// so each test can decode it into the shape it expects.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func setupTestEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	binding.EnableDecoderDisallowUnknownFields = true

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDatabase(db))

	return db, setupRouter(db, audit.NewRecorder(db))
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

// registerOrg registers an organisation and returns the issued token and
// the created user's public fields.
func registerOrg(t *testing.T, router *gin.Engine, orgName, adminName, email, password string) (string, map[string]interface{}) {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"orgName":   orgName,
		"adminName": adminName,
		"email":     email,
		"password":  password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	envelope := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token, data.User
}

func createEmployee(t *testing.T, router *gin.Engine, token, firstName, lastName string) uuid.UUID {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/employees", token, gin.H{
		"first_name": firstName,
		"last_name":  lastName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var employee models.Employee
	envelope := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(envelope.Data, &employee))
	return employee.ID
}

func createTeam(t *testing.T, router *gin.Engine, token, name string) uuid.UUID {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/teams", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var team models.Team
	envelope := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(envelope.Data, &team))
	return team.ID
}

func orgLogCount(t *testing.T, db *gorm.DB, orgID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.LogEntry{}).Where("organisation_id = ?", orgID).Count(&count).Error)
	return count
}

func orgIDFromUser(t *testing.T, user map[string]interface{}) uuid.UUID {
	t.Helper()
	raw, ok := user["org_id"].(string)
	require.True(t, ok, "user payload missing org_id")
	return uuid.MustParse(raw)
}

func TestHealthEndpoint(t *testing.T) {
	_, router := setupTestEnv(t)

	rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestAcmeScenario walks the full register → hire → staff → unstaff flow
// and checks that each mutating step appends exactly one audit entry
// (registration appends two).
func TestAcmeScenario(t *testing.T) {
	db, router := setupTestEnv(t)

	token, user := registerOrg(t, router, "Acme", "Acme Admin", "a@acme.com", "pw123")
	orgID := orgIDFromUser(t, user)
	assert.EqualValues(t, 2, orgLogCount(t, db, orgID))

	employeeID := createEmployee(t, router, token, "Jane", "Doe")
	assert.EqualValues(t, 3, orgLogCount(t, db, orgID))

	teamID := createTeam(t, router, token, "Engineering")
	assert.EqualValues(t, 4, orgLogCount(t, db, orgID))

	rec := doRequest(t, router, http.MethodPost, "/api/teams/"+teamID.String()+"/assign", token, gin.H{
		"employee_ids": []string{employeeID.String()},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 5, orgLogCount(t, db, orgID))

	rec = doRequest(t, router, http.MethodGet, "/api/teams", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var teams []models.Team
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &teams))
	require.Len(t, teams, 1)
	assert.Equal(t, "Engineering", teams[0].Name)
	require.Len(t, teams[0].Employees, 1)
	assert.Equal(t, "Jane", teams[0].Employees[0].FirstName)

	rec = doRequest(t, router, http.MethodDelete, "/api/teams/"+teamID.String()+"/unassign", token, gin.H{
		"employee_id": employeeID.String(),
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.EqualValues(t, 6, orgLogCount(t, db, orgID))

	rec = doRequest(t, router, http.MethodGet, "/api/teams", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	teams = nil
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &teams))
	require.Len(t, teams, 1)
	assert.Empty(t, teams[0].Employees)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	_, router := setupTestEnv(t)

	for _, path := range []string{"/api/employees", "/api/teams", "/api/logs", "/api/stats/employees/count"} {
		rec := doRequest(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestStatsCounts(t *testing.T) {
	_, router := setupTestEnv(t)
	token, _ := registerOrg(t, router, "Acme", "Admin", "admin@acme.com", "pw123")

	createEmployee(t, router, token, "Jane", "Doe")
	createEmployee(t, router, token, "John", "Smith")
	createTeam(t, router, token, "Engineering")

	rec := doRequest(t, router, http.MethodGet, "/api/stats/employees/count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]float64
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &counts))
	assert.EqualValues(t, 2, counts["count"])

	rec = doRequest(t, router, http.MethodGet, "/api/stats/teams/count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	counts = nil
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &counts))
	assert.EqualValues(t, 1, counts["count"])
}

// Two organisations never see each other's partitions, even with valid
// credentials of their own.
func TestTenantIsolationAcrossOrganisations(t *testing.T) {
	_, router := setupTestEnv(t)

	tokenA, _ := registerOrg(t, router, "Org A", "Admin A", "a@a.com", "pw123")
	tokenB, _ := registerOrg(t, router, "Org B", "Admin B", "b@b.com", "pw123")

	employeeB := createEmployee(t, router, tokenB, "Bella", "Bright")

	rec := doRequest(t, router, http.MethodGet, "/api/employees/"+employeeB.String(), tokenA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/employees", tokenA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var employees []models.Employee
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &employees))
	assert.Empty(t, employees)
}

// Ordering sanity for audit timestamps used by the newest-first listing.
func TestAuditTimestampsAdvance(t *testing.T) {
	db, router := setupTestEnv(t)
	token, user := registerOrg(t, router, "Acme", "Admin", "admin@acme.com", "pw123")
	orgID := orgIDFromUser(t, user)

	time.Sleep(5 * time.Millisecond)
	createEmployee(t, router, token, "Jane", "Doe")

	var entries []models.LogEntry
	require.NoError(t, db.Where("organisation_id = ?", orgID).Order("timestamp ASC").Find(&entries).Error)
	require.GreaterOrEqual(t, len(entries), 3)
	assert.True(t, !entries[len(entries)-1].Timestamp.Before(entries[0].Timestamp))
}
