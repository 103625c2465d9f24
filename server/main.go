package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pavitra93/go-hrms/shared/audit"
	"github.com/pavitra93/go-hrms/shared/config"
	"github.com/pavitra93/go-hrms/shared/middleware"
	"github.com/pavitra93/go-hrms/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Unknown fields in JSON bodies are a client error
	binding.EnableDecoderDisallowUnknownFields = true

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateDatabase(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	recorder := audit.NewRecorder(db)
	router := setupRouter(db, recorder)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	logrus.Infof("HRMS backend starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start HRMS backend:", err)
	}
}

func setupRouter(db *gorm.DB, recorder *audit.Recorder) *gin.Engine {
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "HRMS backend is healthy", nil)
	})

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", handleRegister(db, recorder))
		auth.POST("/login", handleLogin(db, recorder))
	}

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(db))
	{
		api.GET("/employees", handleListEmployees(db))
		api.POST("/employees", handleCreateEmployee(db, recorder))
		api.GET("/employees/:id", handleGetEmployee(db))
		api.PUT("/employees/:id", handleUpdateEmployee(db, recorder))
		api.DELETE("/employees/:id", handleDeleteEmployee(db, recorder))

		api.GET("/teams", handleListTeams(db))
		api.POST("/teams", handleCreateTeam(db, recorder))
		api.GET("/teams/:id", handleGetTeam(db))
		api.PUT("/teams/:id", handleUpdateTeam(db, recorder))
		api.DELETE("/teams/:id", handleDeleteTeam(db, recorder))
		api.POST("/teams/:id/assign", handleAssignEmployees(db, recorder))
		api.DELETE("/teams/:id/unassign", handleUnassignEmployee(db, recorder))

		api.GET("/logs", handleListLogs(db))
		api.GET("/stats/employees/count", handleEmployeeCount(db))
		api.GET("/stats/teams/count", handleTeamCount(db))
	}

	return router
}
