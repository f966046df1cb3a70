package report

import (
	"net/http"
	"time"

	"go-timeclock/internal/shared/apperror"
	"go-timeclock/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func parseDateParam(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, key+" query parameter is required", nil)
		return time.Time{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, key+" must be formatted as YYYY-MM-DD", nil)
		return time.Time{}, false
	}
	return day, true
}

func (h *Handler) RangeSummary(c *gin.Context) {
	from, ok := parseDateParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateParam(c, "to")
	if !ok {
		return
	}
	if to.Before(from) {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "to must not be before from", nil)
		return
	}

	resp, err := h.service.RangeSummary(c.Request.Context(), c.Param("employeeId"), from, to)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DailyOverview(c *gin.Context) {
	day, ok := parseDateParam(c, "date")
	if !ok {
		return
	}

	resp, err := h.service.DailyOverview(c.Request.Context(), day)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
