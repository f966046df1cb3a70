package idletime

import (
	"context"
	"errors"
	"time"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/events"
	idletimeerrors "go-timeclock/internal/idletime/errors"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkCreditor credits approved idle seconds back onto the day's
// attendance record.
type WorkCreditor interface {
	CreditWork(ctx context.Context, employeeID string, day time.Time, seconds int64) (attendance.RecordResponse, error)
}

// Broadcaster pushes approval decisions to UI observers. Best-effort.
type Broadcaster interface {
	IdleApprovalUpdate(ctx context.Context, event events.IdleApprovalUpdateEvent)
}

type Service interface {
	Create(ctx context.Context, req CreateIdleRequestRequest) (IdleRequestResponse, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]IdleRequestResponse, error)
	GetPending(ctx context.Context) ([]IdleRequestResponse, error)
	Approve(ctx context.Context, id string) (IdleRequestResponse, error)
	Reject(ctx context.Context, id string) (IdleRequestResponse, error)
}

type service struct {
	gdb         *gorm.DB
	repo        Repository
	creditor    WorkCreditor
	broadcaster Broadcaster
	clk         clock.Clock
	logger      *zap.Logger
}

func NewService(
	gdb *gorm.DB,
	repo Repository,
	creditor WorkCreditor,
	broadcaster Broadcaster,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("idletime.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("idletime.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{
		gdb:         gdb,
		repo:        repo,
		creditor:    creditor,
		broadcaster: broadcaster,
		clk:         clk,
		logger:      l,
	}
}

func (s *service) Create(ctx context.Context, req CreateIdleRequestRequest) (IdleRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return IdleRequestResponse{}, idletimeerrors.ErrInvalidEmployeeID
	}
	if req.IdleSeconds <= 0 {
		return IdleRequestResponse{}, idletimeerrors.ErrInvalidIdleSeconds
	}
	day, err := time.ParseInLocation("2006-01-02", req.RequestDate, time.Local)
	if err != nil {
		return IdleRequestResponse{}, idletimeerrors.ErrInvalidRequestDate
	}

	idle := &IdleRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		RequestDate: day,
		IdleSeconds: req.IdleSeconds,
		Reason:      req.Reason,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, idle); err != nil {
		s.logger.Error("create idle request failed", zap.String("request_id", rid), zap.Error(err))
		return IdleRequestResponse{}, err
	}

	s.logger.Info("idle request created",
		zap.String("request_id", rid),
		zap.String("idle_request_id", idle.ID.String()),
		zap.Int64("idle_seconds", idle.IdleSeconds),
	)
	return mapToResponse(*idle), nil
}

func (s *service) GetByEmployee(ctx context.Context, employeeID string) ([]IdleRequestResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, idletimeerrors.ErrInvalidEmployeeID
	}

	reqs, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToResponses(reqs), nil
}

func (s *service) GetPending(ctx context.Context) ([]IdleRequestResponse, error) {
	reqs, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	return mapToResponses(reqs), nil
}

// Approve flips the request to approved and credits the seconds onto
// that day's attendance record. The credit runs after the status commit;
// if it fails the approval stands and the credit is logged for manual
// follow-up rather than rolled back, since the attendance write has its
// own transaction.
func (s *service) Approve(ctx context.Context, id string) (IdleRequestResponse, error) {
	idle, err := s.decide(ctx, id, StatusApproved)
	if err != nil {
		return IdleRequestResponse{}, err
	}

	if _, err := s.creditor.CreditWork(ctx, idle.EmployeeID.String(), idle.RequestDate, idle.IdleSeconds); err != nil {
		s.logger.Error("idle credit failed after approval",
			zap.String("idle_request_id", idle.ID.String()),
			zap.String("employee_id", idle.EmployeeID.String()),
			zap.Int64("idle_seconds", idle.IdleSeconds),
			zap.Error(err),
		)
	}

	s.notify(ctx, idle)
	return mapToResponse(*idle), nil
}

func (s *service) Reject(ctx context.Context, id string) (IdleRequestResponse, error) {
	idle, err := s.decide(ctx, id, StatusRejected)
	if err != nil {
		return IdleRequestResponse{}, err
	}

	s.notify(ctx, idle)
	return mapToResponse(*idle), nil
}

func (s *service) decide(ctx context.Context, id string, status ApprovalStatus) (*IdleRequest, error) {
	var idle *IdleRequest

	err := s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		found, err := qtx.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return idletimeerrors.ErrRequestNotFound
			}
			return err
		}
		if found.Status != StatusPending {
			return idletimeerrors.ErrAlreadyDecided
		}

		now := s.clk.Now()
		found.Status = status
		found.DecidedAt = &now
		if err := qtx.Update(ctx, found); err != nil {
			return err
		}

		idle = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idle, nil
}

func (s *service) notify(ctx context.Context, idle *IdleRequest) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.IdleApprovalUpdate(ctx, events.IdleApprovalUpdateEvent{
		EventType:      "idle_approval_update",
		RequestID:      contextutil.GetRequestID(ctx),
		EmployeeID:     idle.EmployeeID.String(),
		RequestDate:    idle.RequestDate.Format("2006-01-02"),
		CreditedSecs:   idle.IdleSeconds,
		ApprovalStatus: string(idle.Status),
		OccurredAt:     s.clk.Now().UTC(),
	})
}

func mapToResponse(idle IdleRequest) IdleRequestResponse {
	return IdleRequestResponse{
		ID:          idle.ID.String(),
		EmployeeID:  idle.EmployeeID.String(),
		RequestDate: idle.RequestDate.Format("2006-01-02"),
		IdleSeconds: idle.IdleSeconds,
		Reason:      idle.Reason,
		Status:      string(idle.Status),
	}
}

func mapToResponses(reqs []IdleRequest) []IdleRequestResponse {
	res := make([]IdleRequestResponse, len(reqs))
	for i, r := range reqs {
		res[i] = mapToResponse(r)
	}
	return res
}
