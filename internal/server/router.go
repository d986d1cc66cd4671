package server

import (
	"github.com/athena-ems/athena/internal/auth"
	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/store"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the JSON API. Route gating mirrors the dashboard's
// navigation: /login is open, everything else requires a session, and the
// admin surface additionally requires the admin role.
func NewRouter(identity *auth.Service, st *store.Store, mtr *metrics.Metrics, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ObserveRequests(mtr))

	secure := env == "production"
	authHandler := NewAuthHandler(identity, secure)
	emsHandler := NewEMSHandler(st)

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", RequireSession(identity), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(RequireSession(identity))
	{
		protected.GET("/employees/:id/attendance", emsHandler.GetEmployeeAttendance)
		protected.GET("/employees/:id/stats", emsHandler.GetAttendanceStats)
		protected.GET("/employees/:id/tasks", emsHandler.GetEmployeeTasks)
		protected.PATCH("/tasks/:id/status", emsHandler.UpdateTaskStatus)
	}

	admin := api.Group("")
	admin.Use(RequireSession(identity), RequireRole(models.RoleAdmin))
	{
		admin.GET("/employees", emsHandler.ListEmployees)
		admin.POST("/attendance", emsHandler.MarkAttendance)
		admin.GET("/tasks", emsHandler.ListTasks)
		admin.POST("/tasks", emsHandler.CreateTask)
	}

	return router
}
