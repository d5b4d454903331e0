package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/callwork/backend/internal/handlers"
	"github.com/callwork/backend/internal/middleware"
	"github.com/callwork/backend/internal/models"
)

// Handlers bundles everything RegisterRoutes wires up
type Handlers struct {
	Auth     *handlers.AuthHandler
	Lead     *handlers.LeadHandler
	Operator *handlers.OperatorHandler
	Quality  *handlers.QualityHandler
	Balance  *handlers.BalanceHandler
	Project  *handlers.ProjectHandler
	Call     *handlers.CallHandler
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, h Handlers, rateLimiter *middleware.RateLimiter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(db)

	// Apply rate limiting to auth routes
	authGroup := router.Group("/api/auth")
	authGroup.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.RefreshToken)
		authGroup.POST("/google", h.Auth.GoogleAuth)
	}

	authedAuthGroup := router.Group("/api/auth")
	authedAuthGroup.Use(auth)
	{
		authedAuthGroup.GET("/me", h.Auth.Me)
		authedAuthGroup.POST("/2fa/setup", h.Auth.SetupTwoFactor)
		authedAuthGroup.POST("/2fa/verify", h.Auth.VerifyTwoFactor)
	}

	// Lead CRUD. Reads are role-scoped inside the handler; writes are
	// restricted to supervisors and admins, deletion to admins.
	leadGroup := router.Group("/api/leads")
	leadGroup.Use(auth)
	{
		leadGroup.GET("", h.Lead.List)
		leadGroup.GET("/:id", h.Lead.Get)
		leadGroup.POST("", middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin), h.Lead.Create)
		leadGroup.PUT("/:id", middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin), h.Lead.Update)
		leadGroup.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.Lead.Delete)
		leadGroup.POST("/import", middleware.RequireRole(models.RoleSupervisor, models.RoleAdmin), h.Lead.Import)
	}

	operatorGroup := router.Group("/api/operator")
	operatorGroup.Use(auth, middleware.RequireRole(models.RoleOperator))
	{
		operatorGroup.GET("/status", h.Operator.Status)
		operatorGroup.POST("/next", h.Operator.Next)
		operatorGroup.POST("/complete", h.Operator.Complete)
	}

	qualityGroup := router.Group("/api/quality")
	qualityGroup.Use(auth, middleware.RequireRole(models.RoleQuality, models.RoleAdmin))
	{
		qualityGroup.GET("/reviews", h.Quality.ListReviews)
		qualityGroup.GET("/stream", h.Quality.Stream)
		qualityGroup.POST("/reviews/:id/lock", h.Quality.Lock)
		qualityGroup.POST("/reviews/:id/heartbeat", h.Quality.Heartbeat)
		qualityGroup.POST("/reviews/:id/unlock", h.Quality.Unlock)
		qualityGroup.POST("/reviews/:id/approve", h.Quality.Approve)
		qualityGroup.POST("/reviews/:id/reject", h.Quality.Reject)
		qualityGroup.POST("/reviews/:id/comment", h.Quality.Comment)
	}

	balanceGroup := router.Group("/api/balance")
	balanceGroup.Use(auth)
	{
		balanceGroup.GET("", h.Balance.GetBalance)
		balanceGroup.GET("/transactions", h.Balance.GetTransactions)
		balanceGroup.POST("/withdraw", h.Balance.Withdraw)
	}

	projectGroup := router.Group("/api/projects")
	projectGroup.Use(auth)
	{
		projectGroup.GET("", h.Project.ListProjects)
		projectGroup.POST("", middleware.RequireRole(models.RoleAdmin), h.Project.CreateProject)
		projectGroup.PUT("/:id", middleware.RequireRole(models.RoleAdmin), h.Project.UpdateProject)
		projectGroup.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), h.Project.DeleteProject)
		projectGroup.GET("/:id/scripts", h.Project.ListScripts)
		projectGroup.POST("/:id/scripts", middleware.RequireRole(models.RoleAdmin), h.Project.CreateScript)
		projectGroup.PUT("/:id/scripts/:scriptId", middleware.RequireRole(models.RoleAdmin), h.Project.UpdateScript)
		projectGroup.DELETE("/:id/scripts/:scriptId", middleware.RequireRole(models.RoleAdmin), h.Project.DeleteScript)
	}

	callGroup := router.Group("/api/calls")
	callGroup.Use(auth, middleware.RequireRole(models.RoleOperator))
	{
		callGroup.POST("/dial", h.Call.Dial)
		callGroup.POST("/:id/hangup", h.Call.Hangup)
	}

	// Vendor callback, authenticated by the vendor's shared secret at the
	// transport layer (reverse proxy), not by a user token
	router.POST("/api/webhooks/telephony", h.Call.TelephonyWebhook)
}
