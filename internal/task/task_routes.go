package task

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	tasks := r.Group("/task-timers")
	{
		tasks.POST("", h.Start)
		tasks.POST("/employee/:employeeId/stop", h.Stop)
		tasks.GET("/employee/:employeeId", h.GetByEmployee)
	}
}
