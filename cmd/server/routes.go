package main

import (
	"github.com/gin-gonic/gin"

	"github.com/huangang/teamboard/backend/internal/handlers"
	"github.com/huangang/teamboard/backend/internal/middleware"
	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiters for the public auth routes and invite sending
	authLimiter := middleware.NewRateLimiter(10, 20)
	inviteLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Users (invite picker)
			userHandler := handlers.NewUserHandler(db)
			protected.GET("/users", userHandler.List)

			// Projects
			projectHandler := handlers.NewProjectHandler(db)
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)

			// Project-scoped routes require a membership on the project
			project := protected.Group("/projects/:projectId", middleware.ActorMembershipRequired(db))
			{
				project.GET("", projectHandler.GetByID)
				project.PUT("", middleware.WriteAccessRequired(), projectHandler.Update)
				project.DELETE("", projectHandler.Delete)

				// Invitations
				membershipHandler := handlers.NewMembershipHandler(db)
				project.POST("/members/:userId/invite",
					inviteLimiter.Middleware(), middleware.InvitePrecheck(db), membershipHandler.Invite)

				// Status views
				viewHandler := handlers.NewStatusViewHandler(db)
				project.GET("/views", viewHandler.List)
				project.POST("/views", middleware.WriteAccessRequired(), viewHandler.Create)
				project.PUT("/views/:viewId", middleware.WriteAccessRequired(), viewHandler.Update)
				project.DELETE("/views/:viewId", middleware.WriteAccessRequired(), viewHandler.Delete)

				// View items
				itemHandler := handlers.NewViewItemHandler(db)
				project.GET("/items", itemHandler.List)
				project.POST("/items", middleware.WriteAccessRequired(), itemHandler.Create)
				project.PUT("/items/:itemId", middleware.WriteAccessRequired(), itemHandler.Update)
				project.DELETE("/items/:itemId", middleware.WriteAccessRequired(), itemHandler.Delete)
			}

			// Memberships
			membershipHandler := handlers.NewMembershipHandler(db)
			protected.GET("/memberships", membershipHandler.List)
			protected.PATCH("/memberships/:id/status/:status", membershipHandler.UpdateStatus)
			protected.PATCH("/memberships/:id/permission/:permission",
				middleware.MembershipExistsRequired(db), membershipHandler.UpdatePermission)
			protected.DELETE("/memberships/:id",
				middleware.MembershipExistsRequired(db), membershipHandler.Delete)

			// System Logs
			systemLogHandler := handlers.NewSystemLogHandler(db)
			protected.GET("/system-logs", systemLogHandler.List)
			protected.GET("/system-logs/modules", systemLogHandler.GetModules)
			protected.GET("/system-logs/retention", systemLogHandler.GetRetention)
			protected.PUT("/system-logs/retention", systemLogHandler.UpdateRetention)
			protected.POST("/system-logs/cleanup", systemLogHandler.Cleanup)
		}
	}
}
