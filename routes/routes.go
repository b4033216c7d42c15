package routes

import (
	"erp-task-api/controllers"
	"erp-task-api/middleware"

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

			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "ERP Task API is running",
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

			// Employee directory
			employees := protected.Group("/employees")
			{
				employees.GET("", controllers.GetEmployees)
				employees.GET("/:id", controllers.GetEmployee)
				employees.GET("/:id/tasks", controllers.GetEmployeeTasks)

				// Roster management is admin-only
				employees.POST("", middleware.RequireAdmin(), controllers.CreateEmployee)
				employees.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateEmployee)
				employees.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteEmployee)
				employees.POST("/:id/reset-password", middleware.RequireAdmin(), controllers.ResetEmployeePassword)
			}

			// Tasks
			tasks := protected.Group("/tasks")
			{
				tasks.GET("", controllers.GetTasks)
				tasks.GET("/dashboard", controllers.GetTaskDashboard)
				tasks.GET("/:id", controllers.GetTask)
				tasks.PUT("/:id", controllers.UpdateTask)

				tasks.POST("", middleware.RequireAdmin(), controllers.CreateTask)
				tasks.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteTask)

				// Notes
				tasks.POST("/:id/notes", controllers.AddTaskNote)
				tasks.GET("/:id/notes", controllers.GetTaskNotes)

				// File attachments
				tasks.POST("/:id/attachments", controllers.UploadTaskFile)
				tasks.GET("/:id/attachments", controllers.GetTaskAttachments)
				tasks.GET("/:id/attachments/:attachment_id", controllers.DownloadTaskAttachment)
			}

			// Goals and AI classification
			goals := protected.Group("/goals")
			{
				goals.GET("", controllers.GetGoals)
				goals.GET("/:id", controllers.GetGoal)
				goals.POST("", middleware.RequireAdmin(), controllers.CreateGoal)
				goals.POST("/classify", middleware.RequireAdmin(), controllers.ClassifyGoal)
			}

			// Notification feed
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/count", controllers.GetNotificationCounter)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.DELETE("/:id", controllers.DeleteNotification)
			}
		}
	}
}
