package machine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-timeclock/internal/attendance"
	attendanceerrors "go-timeclock/internal/attendance/errors"
	"go-timeclock/internal/employee"
	"go-timeclock/internal/machine"
	"go-timeclock/internal/shared/clock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeAttendanceService struct {
	attendance.Service

	toggleFn     func(ctx context.Context, employeeID string, recordTime time.Time) (attendance.RecordResponse, error)
	batchApplyFn func(ctx context.Context, employeeID string, logTimes []time.Time) error
}

func (f *fakeAttendanceService) DeviceToggle(ctx context.Context, employeeID string, recordTime time.Time) (attendance.RecordResponse, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, employeeID, recordTime)
	}
	return attendance.RecordResponse{}, nil
}

func (f *fakeAttendanceService) DeviceBatchApply(ctx context.Context, employeeID string, logTimes []time.Time) error {
	if f.batchApplyFn != nil {
		return f.batchApplyFn(ctx, employeeID, logTimes)
	}
	return nil
}

type fakeResolver struct {
	employees map[string]employee.EmployeeResponse
}

func (f *fakeResolver) ResolveMachineUser(ctx context.Context, machineUserID string) (employee.EmployeeResponse, error) {
	if empl, ok := f.employees[machineUserID]; ok {
		return empl, nil
	}
	return employee.EmployeeResponse{}, errors.New("employee not found")
}

type fakeClient struct {
	punches []machine.Punch
	err     error
}

func (f *fakeClient) FetchLog(ctx context.Context) ([]machine.Punch, error) {
	return f.punches, f.err
}

func (f *fakeClient) Subscribe(ctx context.Context) (<-chan machine.Punch, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

var machineNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)

func TestMachineService_ProcessEvent(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	resolver := &fakeResolver{employees: map[string]employee.EmployeeResponse{
		"42": {ID: employeeID, MachineUserID: "42"},
	}}

	t.Run("applies toggle for known user", func(t *testing.T) {
		var toggled []string
		att := &fakeAttendanceService{
			toggleFn: func(ctx context.Context, eid string, recordTime time.Time) (attendance.RecordResponse, error) {
				toggled = append(toggled, eid)
				assert.Equal(t, machineNow.Add(-time.Minute), recordTime)
				return attendance.RecordResponse{Status: string(attendance.StatusWorking)}, nil
			},
		}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		svc.ProcessEvent(ctx, "42", machineNow.Add(-time.Minute))

		assert.Equal(t, []string{employeeID}, toggled)
	})

	t.Run("drops stale event without resolving", func(t *testing.T) {
		att := &fakeAttendanceService{
			toggleFn: func(ctx context.Context, eid string, recordTime time.Time) (attendance.RecordResponse, error) {
				t.Fatal("stale event must not reach the state machine")
				return attendance.RecordResponse{}, nil
			},
		}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		svc.ProcessEvent(ctx, "42", machineNow.Add(-61*time.Minute))
	})

	t.Run("drops unknown machine user silently", func(t *testing.T) {
		att := &fakeAttendanceService{
			toggleFn: func(ctx context.Context, eid string, recordTime time.Time) (attendance.RecordResponse, error) {
				t.Fatal("unknown user must not reach the state machine")
				return attendance.RecordResponse{}, nil
			},
		}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		svc.ProcessEvent(ctx, "unknown", machineNow)
	})

	t.Run("swallows debounce rejections", func(t *testing.T) {
		att := &fakeAttendanceService{
			toggleFn: func(ctx context.Context, eid string, recordTime time.Time) (attendance.RecordResponse, error) {
				return attendance.RecordResponse{}, attendanceerrors.ErrDebounced
			},
		}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		// Best-effort path: no panic, no error surfaced.
		svc.ProcessEvent(ctx, "42", machineNow)
	})
}

func TestMachineService_SyncAttendance(t *testing.T) {
	ctx := context.Background()
	alice := uuid.New().String()
	bob := uuid.New().String()
	resolver := &fakeResolver{employees: map[string]employee.EmployeeResponse{
		"1": {ID: alice, MachineUserID: "1"},
		"2": {ID: bob, MachineUserID: "2"},
	}}

	t.Run("groups today's punches per employee sorted", func(t *testing.T) {
		applied := map[string][]time.Time{}
		att := &fakeAttendanceService{
			batchApplyFn: func(ctx context.Context, eid string, logTimes []time.Time) error {
				applied[eid] = logTimes
				return nil
			},
		}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		today9 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
		today17 := time.Date(2026, 3, 2, 17, 0, 0, 0, time.Local)
		yesterday := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

		client := &fakeClient{punches: []machine.Punch{
			{MachineUserID: "1", RecordTime: today17},
			{MachineUserID: "1", RecordTime: today9},
			{MachineUserID: "2", RecordTime: today9},
			{MachineUserID: "1", RecordTime: yesterday},
			{MachineUserID: "ghost", RecordTime: today9},
		}}

		err := svc.SyncAttendance(ctx, client)

		assert.NoError(t, err)
		assert.Equal(t, []time.Time{today9, today17}, applied[alice])
		assert.Equal(t, []time.Time{today9}, applied[bob])
		assert.Len(t, applied, 2)
	})

	t.Run("negative fetch failure", func(t *testing.T) {
		att := &fakeAttendanceService{}
		svc := machine.NewService(att, resolver, clock.NewFake(machineNow))

		err := svc.SyncAttendance(ctx, &fakeClient{err: errors.New("device unreachable")})

		assert.Error(t, err)
	})
}
