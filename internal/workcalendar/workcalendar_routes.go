package workcalendar

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	calendar := r.Group("/calendar")
	{
		calendar.GET("/settings", h.GetSettings)
		calendar.POST("/settings", h.UpdateSettings)
		calendar.GET("/holidays", h.GetHolidays)
		calendar.POST("/holidays", h.CreateHoliday)
	}
}
