package attendance_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-timeclock/internal/attendance"
	attendanceerrors "go-timeclock/internal/attendance/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeTimerService struct {
	attendance.Service

	startFn      func(ctx context.Context, employeeID string) (attendance.RecordResponse, error)
	checkoutFn   func(ctx context.Context, employeeID string) (attendance.RecordResponse, error)
	dailyStatsFn func(ctx context.Context, employeeID string) (attendance.DailyStatsResponse, error)
}

func (f *fakeTimerService) StartWork(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	return f.startFn(ctx, employeeID)
}

func (f *fakeTimerService) Checkout(ctx context.Context, employeeID string) (attendance.RecordResponse, error) {
	return f.checkoutFn(ctx, employeeID)
}

func (f *fakeTimerService) GetDailyStats(ctx context.Context, employeeID string) (attendance.DailyStatsResponse, error) {
	return f.dailyStatsFn(ctx, employeeID)
}

func timerRequest(t *testing.T, h *attendance.Handler, handle func(*gin.Context), employeeID string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/attendance/"+employeeID+"/start", nil)
	c.Params = gin.Params{{Key: "employeeId", Value: employeeID}}
	handle(c)
	return w
}

func TestAttendanceHandler_StartWork(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakeTimerService{
			startFn: func(ctx context.Context, eid string) (attendance.RecordResponse, error) {
				assert.Equal(t, employeeID, eid)
				return attendance.RecordResponse{
					ID:         uuid.New().String(),
					EmployeeID: eid,
					Status:     string(attendance.StatusWorking),
					RecordDate: "2026-03-02",
				}, nil
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.StartWork, employeeID)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got attendance.RecordResponse
		assert.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, employeeID, got.EmployeeID)
		assert.Equal(t, string(attendance.StatusWorking), got.Status)
	})

	t.Run("negative timer already running", func(t *testing.T) {
		svc := &fakeTimerService{
			startFn: func(ctx context.Context, eid string) (attendance.RecordResponse, error) {
				return attendance.RecordResponse{}, attendanceerrors.ErrAlreadyWorking
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.StartWork, uuid.New().String())

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
		assert.Equal(t, "STATE_CONFLICT", env.Error.Code)
	})

	t.Run("negative unexpected error collapses to 500", func(t *testing.T) {
		svc := &fakeTimerService{
			startFn: func(ctx context.Context, eid string) (attendance.RecordResponse, error) {
				return attendance.RecordResponse{}, errors.New("connection reset")
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.StartWork, uuid.New().String())

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
		// Internal detail must not leak into the envelope.
		assert.NotContains(t, env.Error.Message, "connection reset")
	})
}

func TestAttendanceHandler_Checkout(t *testing.T) {
	t.Run("success returns shortage fields", func(t *testing.T) {
		employeeID := uuid.New().String()
		shortage := 1.0
		cumulative := 2.5
		svc := &fakeTimerService{
			checkoutFn: func(ctx context.Context, eid string) (attendance.RecordResponse, error) {
				return attendance.RecordResponse{
					ID:                 uuid.New().String(),
					EmployeeID:         eid,
					Status:             string(attendance.StatusCheckedOut),
					HoursShortage:      &shortage,
					CumulativeShortage: &cumulative,
				}, nil
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.Checkout, employeeID)

		assert.Equal(t, http.StatusOK, w.Code)
		var got attendance.RecordResponse
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &got))
		assert.Equal(t, string(attendance.StatusCheckedOut), got.Status)
		if assert.NotNil(t, got.HoursShortage) {
			assert.InDelta(t, 1.0, *got.HoursShortage, 1e-9)
		}
		if assert.NotNil(t, got.CumulativeShortage) {
			assert.InDelta(t, 2.5, *got.CumulativeShortage, 1e-9)
		}
	})

	t.Run("negative nothing to check out", func(t *testing.T) {
		svc := &fakeTimerService{
			checkoutFn: func(ctx context.Context, eid string) (attendance.RecordResponse, error) {
				return attendance.RecordResponse{}, attendanceerrors.ErrNoRecordToday
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.Checkout, uuid.New().String())

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestAttendanceHandler_GetDailyStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		employeeID := uuid.New().String()
		svc := &fakeTimerService{
			dailyStatsFn: func(ctx context.Context, eid string) (attendance.DailyStatsResponse, error) {
				assert.Equal(t, employeeID, eid)
				return attendance.DailyStatsResponse{
					WorkSeconds:           7200,
					BreakSeconds:          600,
					RemainingBreakSeconds: 3000,
					RequiredSeconds:       28800,
					CumulativeShortage:    1.5,
				}, nil
			},
		}
		h := attendance.NewHandler(svc)

		w := timerRequest(t, h, h.GetDailyStats, employeeID)

		assert.Equal(t, http.StatusOK, w.Code)
		var got attendance.DailyStatsResponse
		assert.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &got))
		assert.Equal(t, int64(7200), got.WorkSeconds)
		assert.Equal(t, int64(28800), got.RequiredSeconds)
		assert.InDelta(t, 1.5, got.CumulativeShortage, 1e-9)
	})
}
