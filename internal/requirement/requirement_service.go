package requirement

import (
	"context"
	"errors"
	"time"

	requirementerrors "go-timeclock/internal/requirement/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultDailyHours = 8

//go:generate mockgen -source=requirement_service.go -destination=mock/requirement_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateRequirementRequest) (RequirementResponse, error)
	// CurrentDailyHours is consumed by the attendance core as its
	// RequirementSource: the snapshot taken at record creation.
	CurrentDailyHours(ctx context.Context, employeeID string, asOf time.Time) (float64, error)
	// SeedDefault creates the initial 8h version for a new employee unless
	// one already exists. Idempotent; used by the employee lifecycle
	// consumer.
	SeedDefault(ctx context.Context, employeeID string) error
	GetHistory(ctx context.Context, employeeID string) ([]RequirementResponse, error)
}

type service struct {
	gdb    *gorm.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(gdb *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("requirement.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("requirement.service")
	}
	return &service{gdb: gdb, repo: repo, logger: l}
}

// Create opens a new requirement version and closes the current one at the
// new version's effective date, keeping versions contiguous and
// non-overlapping.
func (s *service) Create(ctx context.Context, req CreateRequirementRequest) (RequirementResponse, error) {
	if req.DailyHours <= 0 || req.DailyHours > 24 {
		return RequirementResponse{}, requirementerrors.ErrInvalidDailyHours
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		s.logger.Warn("create requirement invalid effective_from",
			zap.String("effective_from", req.EffectiveFrom),
			zap.Error(err),
		)
		return RequirementResponse{}, requirementerrors.ErrInvalidEffectiveFrom
	}

	row := &WorkHourRequirement{
		ID:            uuid.New(),
		EmployeeID:    uuid.MustParse(req.EmployeeID),
		DailyHours:    req.DailyHours,
		EffectiveFrom: effectiveFrom,
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		current, err := qtx.FindActiveByEmployee(ctx, req.EmployeeID, effectiveFrom)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && !current.EffectiveFrom.Before(effectiveFrom) {
			return requirementerrors.ErrEffectiveFromBeforeCurrent
		}

		if err := qtx.CloseActive(ctx, req.EmployeeID, effectiveFrom); err != nil {
			return err
		}
		return qtx.Create(ctx, row)
	})
	if err != nil {
		s.logger.Error("create requirement failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return RequirementResponse{}, err
	}

	s.logger.Info("requirement version created",
		zap.String("employee_id", req.EmployeeID),
		zap.Float64("daily_hours", req.DailyHours),
		zap.String("effective_from", req.EffectiveFrom),
	)
	return mapToResponse(*row), nil
}

func (s *service) CurrentDailyHours(ctx context.Context, employeeID string, asOf time.Time) (float64, error) {
	req, err := s.repo.FindActiveByEmployee(ctx, employeeID, asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, requirementerrors.ErrRequirementNotFound
		}
		return 0, err
	}
	return req.DailyHours, nil
}

func (s *service) SeedDefault(ctx context.Context, employeeID string) error {
	now := time.Now().UTC()

	_, err := s.repo.FindActiveByEmployee(ctx, employeeID, now)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := &WorkHourRequirement{
		ID:            uuid.New(),
		EmployeeID:    uuid.MustParse(employeeID),
		DailyHours:    defaultDailyHours,
		EffectiveFrom: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return err
	}

	s.logger.Info("default requirement seeded",
		zap.String("employee_id", employeeID),
		zap.Float64("daily_hours", defaultDailyHours),
	)
	return nil
}

func (s *service) GetHistory(ctx context.Context, employeeID string) ([]RequirementResponse, error) {
	rows, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	res := make([]RequirementResponse, len(rows))
	for i, row := range rows {
		res[i] = mapToResponse(row)
	}
	return res, nil
}

func mapToResponse(row WorkHourRequirement) RequirementResponse {
	resp := RequirementResponse{
		ID:            row.ID.String(),
		EmployeeID:    row.EmployeeID.String(),
		DailyHours:    row.DailyHours,
		EffectiveFrom: row.EffectiveFrom.Format("2006-01-02"),
	}
	if row.EffectiveTo != nil {
		v := row.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &v
	}
	return resp
}
