package leave

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	leaves := r.Group("/leaves")
	{
		leaves.POST("", h.Create)
		leaves.GET("/:id", h.GetByID)
		leaves.GET("/employee/:employeeId", h.GetByEmployee)
		leaves.POST("/:id/approve", h.Approve)
		leaves.POST("/:id/reject", h.Reject)
	}
}
