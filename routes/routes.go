package routes

import (
	"stories-platform-api/controllers"
	"stories-platform-api/middleware"
	"stories-platform-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/register", controllers.Register)
			public.POST("/login", controllers.Login)

			// Shop catalog is public
			public.GET("/shop/products", controllers.GetProducts)
			public.GET("/shop/products/:id", controllers.GetProduct)

			// Published author pages are public
			public.GET("/authors/:id", controllers.GetPublicProfile)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Stories Platform API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)
			protected.PUT("/change-password", controllers.ChangePassword)
			protected.GET("/dashboard", controllers.GetDashboard)

			// Account data (GDPR)
			protected.GET("/account/export", controllers.ExportAccountData)
			protected.DELETE("/account", controllers.DeleteAccount)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Submissions
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", controllers.CreateSubmission)
				submissions.PUT("/:id", controllers.UpdateSubmission)
				submissions.DELETE("/:id", controllers.DeleteSubmission)
				submissions.PUT("/:id/cover", controllers.SetSubmissionCover)

				// Workflow actions; the transition table decides who may do
				// what, the routes only require a login.
				submissions.POST("/:id/submit", controllers.SubmitSubmission)
				submissions.POST("/:id/begin-review", controllers.BeginReview)
				submissions.POST("/:id/approve", controllers.ApproveSubmission)
				submissions.POST("/:id/request-revision", controllers.RequestRevision)
				submissions.POST("/:id/begin-format-review", controllers.BeginFormatReview)
				submissions.POST("/:id/format-decision", controllers.FormatDecision)
				submissions.POST("/:id/reject", controllers.RejectSubmission)
				submissions.POST("/:id/resubmit", controllers.ResubmitSubmission)
				submissions.POST("/:id/withdraw", controllers.WithdrawSubmission)
				submissions.POST("/:id/reopen", controllers.ReopenSubmission)

				submissions.GET("/:id/history", controllers.GetWorkflowHistory)
				submissions.GET("/:id/actions", controllers.GetAllowedActions)

				// Review comments
				submissions.POST("/:id/comments", controllers.CreateComment)
				submissions.GET("/:id/comments", controllers.GetComments)

				// Reviewer assignment
				submissions.PUT("/:id/reviewer",
					middleware.RequireRole(models.RoleStoryManager, models.RoleAdmin),
					controllers.AssignReviewer)
			}

			// Comment lifecycle
			comments := protected.Group("/comments")
			{
				comments.PUT("/:comment_id/resolve", controllers.ResolveComment)
				comments.PUT("/:comment_id/reopen", controllers.ReopenComment)
				comments.PUT("/:comment_id/archive", controllers.ArchiveComment)
				comments.DELETE("/:comment_id", controllers.DeleteComment)
			}

			// Classrooms
			classes := protected.Group("/classes")
			{
				classes.GET("", controllers.GetClasses)
				classes.POST("/join", controllers.JoinClass)

				classes.POST("",
					middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
					controllers.CreateClass)
				classes.GET("/:id/roster",
					middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
					controllers.GetClassRoster)
				classes.DELETE("/:id/members/:user_id",
					middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
					controllers.RemoveClassMember)
				classes.POST("/:id/join-code",
					middleware.RequireRole(models.RoleTeacher, models.RoleAdmin),
					controllers.RegenerateJoinCode)
			}

			// Media library
			media := protected.Group("/media")
			{
				media.POST("/upload", controllers.UploadMediaFile)
				media.GET("", controllers.GetMediaFiles)
				media.GET("/:id/download", controllers.DownloadMediaFile)
				media.DELETE("/:id", controllers.DeleteMediaFile)
			}

			// Education materials
			materials := protected.Group("/materials")
			{
				materials.GET("", controllers.GetMaterials)
				materials.GET("/:id", controllers.GetMaterial)
			}

			// Shop management
			shop := protected.Group("/shop")
			shop.Use(middleware.RequireRole(models.RoleBookManager, models.RoleAdmin))
			{
				shop.POST("/products", controllers.CreateProduct)
				shop.PUT("/products/:id", controllers.UpdateProduct)
			}

			// Admin reports
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/reports/submissions", controllers.ExportSubmissionsReport)
				admin.GET("/reports/users", controllers.ExportUsersReport)
			}
		}
	}
}
