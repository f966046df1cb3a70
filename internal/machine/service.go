package machine

import (
	"context"
	"errors"
	"sort"
	"time"

	"go-timeclock/internal/attendance"
	attendanceerrors "go-timeclock/internal/attendance/errors"
	"go-timeclock/internal/employee"
	"go-timeclock/internal/shared/clock"

	"go.uber.org/zap"
)

// EmployeeResolver maps device badge identities to employees.
type EmployeeResolver interface {
	ResolveMachineUser(ctx context.Context, machineUserID string) (employee.EmployeeResponse, error)
}

// Service is the adapter between raw device punches and attendance
// transitions. Everything here is best-effort: a punch has no
// interactive caller, so failures are logged and swallowed.
type Service interface {
	ProcessEvent(ctx context.Context, machineUserID string, recordTime time.Time)
	SyncAttendance(ctx context.Context, client Client) error
}

type service struct {
	attendance attendance.Service
	employees  EmployeeResolver
	clk        clock.Clock
	logger     *zap.Logger
}

func NewService(att attendance.Service, employees EmployeeResolver, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("machine.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("machine.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{attendance: att, employees: employees, clk: clk, logger: l}
}

func (s *service) ProcessEvent(ctx context.Context, machineUserID string, recordTime time.Time) {
	now := s.clk.Now()

	if IsStale(recordTime, now) {
		s.logger.Debug("dropping stale device event",
			zap.String("machine_user_id", machineUserID),
			zap.Time("record_time", recordTime),
		)
		return
	}

	empl, err := s.employees.ResolveMachineUser(ctx, machineUserID)
	if err != nil {
		s.logger.Warn("device event for unknown machine user",
			zap.String("machine_user_id", machineUserID),
			zap.Error(err),
		)
		return
	}

	if _, err := s.attendance.DeviceToggle(ctx, empl.ID, recordTime); err != nil {
		if errors.Is(err, attendanceerrors.ErrDebounced) {
			s.logger.Debug("dropping debounced device event",
				zap.String("employee_id", empl.ID),
				zap.Time("record_time", recordTime),
			)
			return
		}
		s.logger.Error("device event transition failed",
			zap.String("employee_id", empl.ID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("device event applied",
		zap.String("employee_id", empl.ID),
		zap.String("machine_user_id", machineUserID),
		zap.Time("record_time", recordTime),
	)
}

// SyncAttendance is the coarse reconciliation pass used when real-time
// mode is off. It pulls the whole device log, keeps today's entries,
// and applies them per employee in one batch.
func (s *service) SyncAttendance(ctx context.Context, client Client) error {
	punches, err := client.FetchLog(ctx)
	if err != nil {
		s.logger.Error("fetch device log failed", zap.Error(err))
		return err
	}

	today := attendance.DayOf(s.clk.Now())

	byEmployee := make(map[string][]time.Time)
	for _, p := range punches {
		if !attendance.DayOf(p.RecordTime).Equal(today) {
			continue
		}

		empl, err := s.employees.ResolveMachineUser(ctx, p.MachineUserID)
		if err != nil {
			s.logger.Warn("sync log entry for unknown machine user",
				zap.String("machine_user_id", p.MachineUserID),
			)
			continue
		}
		byEmployee[empl.ID] = append(byEmployee[empl.ID], p.RecordTime)
	}

	var synced, failed int
	for employeeID, logTimes := range byEmployee {
		sort.Slice(logTimes, func(i, j int) bool { return logTimes[i].Before(logTimes[j]) })

		if err := s.attendance.DeviceBatchApply(ctx, employeeID, logTimes); err != nil {
			failed++
			s.logger.Error("batch apply failed",
				zap.String("employee_id", employeeID),
				zap.Int("log_count", len(logTimes)),
				zap.Error(err),
			)
			continue
		}
		synced++
	}

	s.logger.Info("machine attendance sync complete",
		zap.Int("employees_synced", synced),
		zap.Int("employees_failed", failed),
		zap.Int("punches_total", len(punches)),
	)
	return nil
}
