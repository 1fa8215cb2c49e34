// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/permitdesk/permit-backend/internal/config"
	"github.com/permitdesk/permit-backend/internal/handlers"
	"github.com/permitdesk/permit-backend/internal/middleware"
	"github.com/permitdesk/permit-backend/internal/services"
	"github.com/permitdesk/permit-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	justificationService := services.NewJustificationService(db)
	complianceService := services.NewComplianceService(db, cfg.Compliance, justificationService)

	authService := services.NewAuthService(db, cfg)
	businessService := services.NewBusinessService(db)
	qualifierService := services.NewQualifierService(db)
	projectService := services.NewProjectService(db)
	permitService := services.NewPermitService(db)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	businessHandler := handlers.NewBusinessHandler(businessService)
	qualifierHandler := handlers.NewQualifierHandler(qualifierService, complianceService)
	projectHandler := handlers.NewProjectHandler(projectService, complianceService)
	permitHandler := handlers.NewPermitHandler(permitService, complianceService)
	justificationHandler := handlers.NewJustificationHandler(justificationService)
	adminHandler := handlers.NewAdminHandler(auditService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Licensed business routes
		businesses := v1.Group("/businesses")
		businesses.Use(middleware.AuthRequired())
		{
			businesses.GET("", businessHandler.GetBusinesses)
			businesses.GET("/:id", businessHandler.GetBusiness)
			businesses.POST("", middleware.StaffRequired(), businessHandler.CreateBusiness)
			businesses.PUT("/:id", middleware.StaffRequired(), businessHandler.UpdateBusiness)
			businesses.POST("/:id/deactivate", middleware.AdminRequired(), businessHandler.DeactivateBusiness)
		}

		// Qualifier routes
		qualifiers := v1.Group("/qualifiers")
		qualifiers.Use(middleware.AuthRequired())
		{
			qualifiers.GET("", qualifierHandler.GetQualifiers)
			qualifiers.GET("/:id", qualifierHandler.GetQualifier)
			qualifiers.GET("/:id/assignments", qualifierHandler.GetAssignments)
			qualifiers.GET("/:id/capacity", qualifierHandler.CheckCapacity)
			qualifiers.POST("", middleware.StaffRequired(), qualifierHandler.RegisterQualifier)
		}

		// Assignment routes (capacity and cutoff enforcement happens here)
		assignments := v1.Group("/assignments")
		assignments.Use(middleware.AuthRequired(), middleware.StaffRequired(), middleware.ComplianceRateLimit())
		{
			assignments.POST("", qualifierHandler.AssignQualifier)
			assignments.POST("/:id/exit", qualifierHandler.QualifierExit)
		}

		// Project routes
		projects := v1.Group("/projects")
		projects.Use(middleware.AuthRequired())
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("", middleware.StaffRequired(), projectHandler.CreateProject)
			projects.PUT("/:id", middleware.StaffRequired(), projectHandler.UpdateProject)
			projects.POST("/:id/archive", middleware.AdminRequired(), projectHandler.ArchiveProject)
		}

		// Permit routes
		permits := v1.Group("/permits")
		permits.Use(middleware.AuthRequired())
		{
			permits.GET("", permitHandler.GetPermits)
			permits.GET("/:id", permitHandler.GetPermit)
			permits.GET("/:id/oversight", permitHandler.EvaluateOversight)
			permits.GET("/:id/oversight-actions", permitHandler.GetOversightActions)
			permits.POST("", middleware.StaffRequired(), permitHandler.CreatePermit)
			permits.PUT("/:id/status", middleware.StaffRequired(), permitHandler.TransitionPermit)
			permits.POST("/:id/finalize", middleware.StaffRequired(), middleware.ComplianceRateLimit(), permitHandler.FinalizePermit)
			permits.POST("/:id/oversight-actions", middleware.StaffRequired(), middleware.ComplianceRateLimit(), permitHandler.RecordOversightAction)
		}

		// Justification routes (read-only; rows are written by the compliance engine)
		justifications := v1.Group("/justifications")
		justifications.Use(middleware.AuthRequired())
		{
			justifications.GET("", justificationHandler.GetJustifications)
			justifications.GET("/:id", justificationHandler.GetJustification)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r
}
