package routes

import (
	"net/http"
	"time"

	"tradehub_backend/internal/handlers"
	"tradehub_backend/internal/middleware"
	"tradehub_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes монтирует все маршруты API под /api/v1
func RegisterRoutes(r *gin.Engine, h *handlers.AppHandlers, redisClient *redis.Client) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	// аутентификация; логин и сброс пароля закрыты лимитером
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.RegisterCustomer)
		auth.POST("/register/tradesperson", h.Auth.RegisterTradesperson)
		auth.POST("/login", middleware.RateLimit(redisClient, 10, time.Minute, "login"), h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.POST("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/resend-verification", middleware.RateLimit(redisClient, 5, time.Minute, "resend"), h.Auth.ResendVerification)
		auth.GET("/me", middleware.AuthMiddleware(), h.Auth.Me)
		auth.POST("/forgot-password", middleware.RateLimit(redisClient, 5, time.Minute, "forgot"), h.Auth.ForgotPassword)
		auth.POST("/reset-password", h.Auth.ResetPassword)
	}

	trades := api.Group("/trades")
	{
		trades.GET("", h.Trade.List)
		trades.GET("/:id", h.Trade.Get)

		adminOnly := trades.Group("", middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
		adminOnly.POST("", h.Trade.Create)
		adminOnly.PUT("/:id", h.Trade.Update)
		adminOnly.DELETE("/:id", h.Trade.Deactivate)
	}

	jobs := api.Group("/jobs")
	{
		jobs.GET("", h.Job.List)

		authed := jobs.Group("", middleware.AuthMiddleware())
		authed.GET("/mine", middleware.RequireRoles(models.UserRoleCustomer, models.UserRoleAdmin), h.Job.MyJobs)
		authed.GET("/applied", middleware.RequireRoles(models.UserRoleTradesperson), h.Job.AppliedJobs)
		authed.GET("/:id", h.Job.Get)
		authed.POST("", middleware.RequireRoles(models.UserRoleCustomer, models.UserRoleAdmin), h.Job.Create)
		authed.PUT("/:id", middleware.RequireRoles(models.UserRoleCustomer, models.UserRoleAdmin), h.Job.Update)
		authed.POST("/:id/apply", middleware.RequireRoles(models.UserRoleTradesperson), h.Job.Apply)
		authed.POST("/:id/applications/:applicantId/decision", middleware.RequireRoles(models.UserRoleCustomer, models.UserRoleAdmin), h.Job.DecideApplicant)
		authed.PATCH("/:id/status", middleware.RequireRoles(models.UserRoleCustomer, models.UserRoleAdmin), h.Job.UpdateStatus)
	}

	profiles := api.Group("/profiles")
	{
		profiles.GET("/:id", h.Profile.GetPublic)

		me := profiles.Group("/me", middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleTradesperson))
		me.GET("", h.Profile.GetMine)
		me.PUT("", h.Profile.Update)
		me.GET("/credits", h.Profile.Credits)
		me.POST("/documents/:kind", h.Profile.UploadDocument)
		me.POST("/gallery", h.Profile.AddGalleryImage)
		me.DELETE("/gallery", h.Profile.RemoveGalleryImage)
	}

	billing := api.Group("/billing")
	{
		billing.POST("/webhook", h.Billing.Webhook)

		authed := billing.Group("", middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleTradesperson))
		authed.POST("/credits", h.Billing.PurchaseCredits)
		authed.POST("/subscribe", h.Billing.Subscribe)
		authed.DELETE("/subscribe", h.Billing.CancelSubscription)
		authed.GET("/subscription", h.Billing.GetSubscription)
	}

	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/users", h.Admin.ListUsers)
		admin.PATCH("/users/:id/status", h.Admin.ChangeUserStatus)
	}
}
