package machine

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	machine := r.Group("/machine")
	{
		machine.POST("/sync", h.Sync)
	}
}
