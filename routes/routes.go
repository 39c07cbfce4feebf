package routes

import (
	"innovation-tracking-api/controllers"
	"innovation-tracking-api/middleware"
	"innovation-tracking-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Innovation Tracking API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Assessment lifecycle
			innovations := protected.Group("/innovations/:innovationId")
			{
				innovations.GET("/assessments", controllers.GetAssessments)
				innovations.POST("/assessments", middleware.RequireRole(models.RoleAssessor), controllers.CreateAssessment)
				innovations.PUT("/assessments/:assessmentId", middleware.RequireRole(models.RoleAssessor), controllers.UpdateAssessment)
				innovations.POST("/assessments/edit", middleware.RequireRole(models.RoleAssessor), controllers.EditAssessment)
				innovations.PATCH("/assessments/:assessmentId/assessor", middleware.RequireRole(models.RoleAssessor, models.RoleAdmin), controllers.UpdateAssessor)
				innovations.POST("/reassessments", middleware.RequireRole(models.RoleInnovator, models.RoleAssessor), controllers.CreateReassessment)

				innovations.GET("/notify-me", controllers.GetInnovationNotifyMeSubscriptions)
				innovations.GET("/statistics/supports", controllers.GetInnovationSupportStatistics)
			}

			assessments := protected.Group("/assessments/:assessmentId")
			{
				assessments.GET("", controllers.GetAssessment)
				assessments.GET("/exemption", controllers.GetExemption)
				assessments.PATCH("/exemption", middleware.RequireRole(models.RoleAssessor), controllers.UpsertExemption)
			}

			// Notify-me subscriptions
			notifyMe := protected.Group("/notify-me")
			{
				notifyMe.POST("", controllers.CreateNotifyMeSubscription)
				notifyMe.GET("", controllers.GetNotifyMeSubscriptions)
				notifyMe.DELETE("", controllers.DeleteNotifyMeSubscriptions)
				notifyMe.GET("/:subscriptionId", controllers.GetNotifyMeSubscription)
				notifyMe.PUT("/:subscriptionId", controllers.UpdateNotifyMeSubscription)
				notifyMe.DELETE("/:subscriptionId", controllers.DeleteNotifyMeSubscription)
			}

			// In-app notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/counter", controllers.GetNotificationCounter)
				notifications.PATCH("/:id/read", controllers.MarkNotificationRead)
				notifications.PATCH("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Announcements
			announcements := protected.Group("/announcements")
			{
				announcements.GET("", controllers.GetAnnouncements)
				announcements.POST("", middleware.RequireRole(models.RoleAdmin), controllers.CreateAnnouncement)
				announcements.PATCH("/:id/expire", middleware.RequireRole(models.RoleAdmin), controllers.ExpireAnnouncement)
			}

			// Statistics
			statistics := protected.Group("/statistics")
			{
				statistics.GET("/workload", middleware.RequireRole(models.RoleAssessor, models.RoleAdmin), controllers.GetAssessorWorkload)
				statistics.GET("/innovations", middleware.RequireRole(models.RoleAssessor, models.RoleAdmin), controllers.GetInnovationStatusStatistics)
			}
		}
	}
}
