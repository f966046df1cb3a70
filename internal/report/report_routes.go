package report

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	reports := r.Group("/reports")
	{
		reports.GET("/attendance/:employeeId/summary", h.RangeSummary)
		reports.GET("/attendance/daily", h.DailyOverview)
	}
}
