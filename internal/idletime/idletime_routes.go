package idletime

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	idle := r.Group("/idle-requests")
	{
		idle.POST("", h.Create)
		idle.GET("/pending", h.GetPending)
		idle.GET("/employee/:employeeId", h.GetByEmployee)
		idle.POST("/:id/approve", h.Approve)
		idle.POST("/:id/reject", h.Reject)
	}
}
