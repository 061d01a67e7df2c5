package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/creative-task-api/internal/metrics"
	"github.com/yukikurage/creative-task-api/internal/middleware"
)

// Register mounts the API on r. auth resolves the actor for every /api route.
func Register(r *gin.Engine, auth gin.HandlerFunc, tasks *TaskHandler, workload *WorkloadHandler, notifications *NotificationHandler) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Creative Task API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		taskRoutes := api.Group("/tasks")
		taskRoutes.Use(auth)
		{
			project := taskRoutes.Group("/project/:projectId", middleware.RequireProjectAccess())
			project.GET("", tasks.ListProjectTasks)
			project.POST("", tasks.CreateTask)
			project.GET("/completed", tasks.ListCompletedProjectTasks)
			project.POST("/drafts", tasks.DraftTasks)

			taskRoutes.GET("/user", tasks.ListTasks)
			taskRoutes.GET("/user/assigned", tasks.ListMyTasks)
			taskRoutes.GET("/user/unassigned", tasks.ListUnassignedTasks)

			org := taskRoutes.Group("/workload/:organizationId", middleware.RequireOrganizationScope())
			org.GET("", workload.DesignerWorkload)
			org.GET("/overview", workload.OrganizationOverview)

			task := taskRoutes.Group("/:taskId", middleware.RequireTaskAccess())
			task.GET("", tasks.GetTask)
			task.PUT("", tasks.UpdateTask)
			task.DELETE("", tasks.DeleteTask)
			task.PATCH("/status", tasks.SetStatus)
			task.POST("/activity", tasks.AddActivity)
			task.POST("/deliverables", tasks.AddDeliverable)
		}

		notificationRoutes := api.Group("/notifications")
		notificationRoutes.Use(auth)
		{
			notificationRoutes.GET("", notifications.ListNotifications)
			notificationRoutes.GET("/unread-count", notifications.UnreadCount)
			notificationRoutes.PATCH("/read-all", notifications.MarkAllAsRead)
			notificationRoutes.PATCH("/:id/read", notifications.MarkAsRead)
			notificationRoutes.DELETE("/:id", notifications.DeleteNotification)
		}
	}
}
