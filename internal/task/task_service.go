package task

import (
	"context"
	"errors"
	"time"

	"go-timeclock/internal/shared/clock"
	taskerrors "go-timeclock/internal/task/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	StartTimer(ctx context.Context, req StartTimerRequest) (TimerResponse, error)
	// StopActive stops the employee's running timer, flushing elapsed
	// time into its total. A missing running timer is not an error here:
	// the attendance side calls this on every forced stop.
	StopActive(ctx context.Context, employeeID string) error
	GetByEmployee(ctx context.Context, employeeID string) ([]TimerResponse, error)
}

type service struct {
	gdb    *gorm.DB
	repo   Repository
	clk    clock.Clock
	logger *zap.Logger
}

func NewService(gdb *gorm.DB, repo Repository, clk clock.Clock, logger ...*zap.Logger) Service {
	l := zap.L().Named("task.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("task.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{gdb: gdb, repo: repo, clk: clk, logger: l}
}

func (s *service) StartTimer(ctx context.Context, req StartTimerRequest) (TimerResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return TimerResponse{}, taskerrors.ErrInvalidEmployeeID
	}

	now := s.clk.Now()
	var timer *TaskTimer

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if err := stopRunning(ctx, qtx, req.EmployeeID, now); err != nil {
			return err
		}

		timer = &TaskTimer{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			TaskName:   req.TaskName,
			StartedAt:  now,
		}
		return qtx.Create(ctx, timer)
	})
	if err != nil {
		s.logger.Error("start task timer failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return TimerResponse{}, err
	}

	s.logger.Info("task timer started",
		zap.String("timer_id", timer.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("task_name", req.TaskName),
	)
	return mapToResponse(*timer), nil
}

func (s *service) StopActive(ctx context.Context, employeeID string) error {
	if _, err := uuid.Parse(employeeID); err != nil {
		return taskerrors.ErrInvalidEmployeeID
	}

	now := s.clk.Now()
	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return stopRunning(ctx, s.repo.WithTx(tx), employeeID, now)
	})
	if err != nil {
		s.logger.Error("stop active task timer failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]TimerResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, taskerrors.ErrInvalidEmployeeID
	}

	timers, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	res := make([]TimerResponse, len(timers))
	for i, t := range timers {
		res[i] = mapToResponse(t)
	}
	return res, nil
}

func stopRunning(ctx context.Context, repo Repository, employeeID string, now time.Time) error {
	running, err := repo.FindRunningByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	elapsed := int64(now.Sub(running.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	running.StoppedAt = &now
	running.TotalSeconds += elapsed
	return repo.Update(ctx, running)
}

func mapToResponse(t TaskTimer) TimerResponse {
	resp := TimerResponse{
		ID:           t.ID.String(),
		EmployeeID:   t.EmployeeID.String(),
		TaskName:     t.TaskName,
		StartedAt:    t.StartedAt.Format(time.RFC3339),
		TotalSeconds: t.TotalSeconds,
	}
	if t.StoppedAt != nil {
		v := t.StoppedAt.Format(time.RFC3339)
		resp.StoppedAt = &v
	}
	return resp
}
