package machine

import (
	"net/http"
	"time"

	"go-timeclock/internal/shared/apperror"
	"go-timeclock/internal/shared/response"
	"go-timeclock/internal/workcalendar"

	"github.com/gin-gonic/gin"
)

// ClientFactory builds a device client for the address configured in
// the active calendar settings.
type ClientFactory func(host string, port int) Client

type Handler struct {
	service  Service
	calendar workcalendar.Service
	clients  ClientFactory
}

func NewHandler(service Service, calendar workcalendar.Service, clients ClientFactory) *Handler {
	if clients == nil {
		clients = NewTCPClient
	}
	return &Handler{service: service, calendar: calendar, clients: clients}
}

// Sync triggers a one-shot batch reconciliation against the device.
func (h *Handler) Sync(c *gin.Context) {
	ctx := c.Request.Context()

	settings, err := h.calendar.SettingsAsOf(ctx, time.Now())
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}
	if settings.MachineHost == "" {
		response.Error(c, http.StatusConflict, apperror.CodeStateConflict, "no biometric device configured", nil)
		return
	}

	client := h.clients(settings.MachineHost, settings.MachinePort)
	if err := h.service.SyncAttendance(ctx, client); err != nil {
		response.Error(c, http.StatusBadGateway, "DEVICE_UNREACHABLE", "device sync failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"synced": true}, nil)
}
