package attendance

import (
	"go-timeclock/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	timer := r.Group("/attendance/:employeeId")
	// badge double-taps are filtered server-side too, but there is no reason
	// to let a stuck client hammer the timer endpoints
	timer.Use(middleware.RateLimitByIP(rate.Limit(5), 10))
	{
		timer.POST("/start", h.StartWork)
		timer.POST("/break", h.PauseToBreak)
		timer.POST("/stop", h.StopTimer)
		timer.POST("/checkout", h.Checkout)
		timer.GET("/status", h.GetLiveStatus)
		timer.GET("/elapsed", h.GetLiveElapsed)
		timer.GET("/daily-stats", h.GetDailyStats)
	}
}
