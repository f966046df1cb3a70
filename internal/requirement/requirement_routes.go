package requirement

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	requirements := r.Group("/work-hour-requirements")
	{
		requirements.POST("", h.Create)
		requirements.GET("/:employeeId", h.GetHistory)
	}
}
