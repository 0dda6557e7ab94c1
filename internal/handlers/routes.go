package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/middleware"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Visibility *services.VisibilityService
	Assignment *services.AssignmentService
	Lifecycle  *services.LifecycleService
	Reporting  *services.ReportingService
	Stats      *services.StatsService
	AI         *services.AIService
}

// RegisterRoutes mounts the API on r. Session middleware must already be
// installed on r.
func RegisterRoutes(r *gin.Engine, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	taskHandler := NewTaskHandler(svc.Visibility, svc.Assignment, svc.Lifecycle, svc.Stats)
	managerHandler := NewManagerHandler(svc.Visibility, svc.Assignment, svc.Reporting, svc.Stats, svc.AI)
	directorHandler := NewDirectorHandler(svc.Visibility)
	adminHandler := NewAdminHandler(svc.Users)

	requireAuth := middleware.RequireAuth(svc.Auth)
	management := middleware.RequireRole(models.RoleManager, models.RoleDirector)
	directorOnly := middleware.RequireRole(models.RoleDirector)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Hierarchy API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/validate", authHandler.Validate)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
			auth.GET("/is-director", requireAuth, authHandler.IsDirector)
		}

		me := api.Group("/me/tasks")
		me.Use(requireAuth)
		{
			me.GET("", taskHandler.ListMyTasks)
			me.GET("/active", taskHandler.ListMyActiveTasks)
			me.GET("/status/:status", taskHandler.ListMyTasksByStatus)
			me.GET("/stats", taskHandler.MyStats)
			me.PUT("/:id/complete", taskHandler.CompleteTask)
			me.PUT("/:id/status", taskHandler.UpdateStatus)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", directorOnly, taskHandler.ListTasks)
			tasks.POST("", management, taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(svc.Visibility), taskHandler.GetTask)
			tasks.PUT("/:id", management, taskHandler.EditTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		manager := api.Group("/manager")
		manager.Use(requireAuth, middleware.RequireRole(models.RoleManager))
		{
			manager.GET("/team-members", managerHandler.TeamMembers)
			manager.GET("/team-tasks", managerHandler.TeamTasks)
			manager.GET("/my-tasks", managerHandler.MyTasks)
			manager.GET("/own-tasks", managerHandler.OwnTasks)
			manager.GET("/team-performance", managerHandler.TeamPerformance)
			manager.GET("/completed-tasks", managerHandler.CompletedTasks)
			manager.POST("/assign-task", managerHandler.AssignTask)
			manager.POST("/report-to-director", managerHandler.ReportToDirector)
			manager.POST("/draft-tasks", managerHandler.DraftTasks)
			manager.PUT("/tasks/:id", taskHandler.EditTask)
			manager.DELETE("/tasks/:id", taskHandler.DeleteTask)
		}

		director := api.Group("/director")
		director.Use(requireAuth, directorOnly)
		{
			director.GET("/tasks", directorHandler.Tasks)
			director.GET("/reported-tasks", directorHandler.ReportedTasks)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, directorOnly)
		{
			admin.POST("/users", adminHandler.CreateUser)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PUT("/users/:id", adminHandler.UpdateUser)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
			admin.GET("/managers", adminHandler.ListManagers)
		}
	}
}
