package leave

import (
	"context"
	"errors"
	"time"

	attendanceerrors "go-timeclock/internal/attendance/errors"
	leaveerrors "go-timeclock/internal/leave/errors"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/shared/contextutil"
	"go-timeclock/internal/workcalendar"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// LeaveMarker writes terminal leave records onto attendance days.
type LeaveMarker interface {
	MarkLeave(ctx context.Context, employeeID string, day time.Time) error
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	Approve(ctx context.Context, id string) (LeaveResponse, error)
	Reject(ctx context.Context, id string) (LeaveResponse, error)
}

type service struct {
	gdb      *gorm.DB
	repo     Repository
	marker   LeaveMarker
	calendar workcalendar.Service
	clk      clock.Clock
	logger   *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	repo Repository,
	marker LeaveMarker,
	calendar workcalendar.Service,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{
		gdb:      gdb,
		repo:     repo,
		marker:   marker,
		calendar: calendar,
		clk:      clk,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, req CreateLeaveRequest) (LeaveResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidEmployeeID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	if startDate.After(endDate) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	var l *Leave
	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		overlap, err := qtx.HasOverlappingPeriod(ctx, req.EmployeeID, startDate, endDate)
		if err != nil {
			return err
		}
		if overlap {
			s.logger.Warn("create leave overlap detected",
				zap.String("employee_id", req.EmployeeID),
				zap.String("start_date", req.StartDate),
				zap.String("end_date", req.EndDate),
			)
			return leaveerrors.ErrLeaveOverlap
		}

		l = &Leave{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			LeaveType:  req.LeaveType,
			StartDate:  startDate,
			EndDate:    endDate,
			TotalDays:  int(endDate.Sub(startDate).Hours()/24) + 1,
			Reason:     req.Reason,
			Status:     StatusPending,
		}
		return qtx.Create(ctx, l)
	})
	if err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, leaveerrors.ErrInvalidEmployeeID
	}

	leaves, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	res := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		res[i] = mapToResponse(l)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

// Approve flips the request to approved, then marks each working day of
// the period as leave on the attendance side. Weekly offs and holidays
// inside the period are skipped, as is any day that already has timer
// activity.
func (s *service) Approve(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.decide(ctx, id, StatusApproved)
	if err != nil {
		return LeaveResponse{}, err
	}

	for day := l.StartDate; !day.After(l.EndDate); day = day.AddDate(0, 0, 1) {
		working, err := s.calendar.IsWorkingDay(ctx, day)
		if err != nil {
			s.logger.Error("leave day calendar lookup failed",
				zap.String("leave_id", l.ID.String()),
				zap.Time("day", day),
				zap.Error(err),
			)
			continue
		}
		if !working {
			continue
		}

		if err := s.marker.MarkLeave(ctx, l.EmployeeID.String(), day); err != nil {
			if errors.Is(err, attendanceerrors.ErrDayHasActivity) {
				s.logger.Warn("leave day skipped, attendance already present",
					zap.String("leave_id", l.ID.String()),
					zap.String("employee_id", l.EmployeeID.String()),
					zap.Time("day", day),
				)
				continue
			}
			s.logger.Error("mark leave day failed",
				zap.String("leave_id", l.ID.String()),
				zap.Time("day", day),
				zap.Error(err),
			)
		}
	}

	return mapToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.decide(ctx, id, StatusRejected)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) decide(ctx context.Context, id string, status string) (*Leave, error) {
	var l *Leave

	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		found, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return leaveerrors.ErrLeaveNotFound
			}
			return err
		}
		if found.Status != StatusPending {
			return leaveerrors.ErrAlreadyDecided
		}

		now := s.clk.Now()
		found.Status = status
		found.DecidedAt = &now
		if err := qtx.Update(ctx, found); err != nil {
			return err
		}

		l = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDate
	}
	return d, nil
}

func mapToResponse(l Leave) LeaveResponse {
	return LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
	}
}
