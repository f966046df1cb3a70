package requirement

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=requirement_repo.go -destination=mock/requirement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *WorkHourRequirement) error
	FindActiveByEmployee(ctx context.Context, employeeID string, asOf time.Time) (*WorkHourRequirement, error)
	CloseActive(ctx context.Context, employeeID string, at time.Time) error
	FindAllByEmployee(ctx context.Context, employeeID string) ([]WorkHourRequirement, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *WorkHourRequirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindActiveByEmployee(ctx context.Context, employeeID string, asOf time.Time) (*WorkHourRequirement, error) {
	var req WorkHourRequirement
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("effective_from <= ?", asOf.Format("2006-01-02")).
		Where("effective_to IS NULL OR effective_to > ?", asOf.Format("2006-01-02")).
		Order("effective_from DESC").
		First(&req).Error
	return &req, err
}

func (r *repository) CloseActive(ctx context.Context, employeeID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&WorkHourRequirement{}).
		Where("employee_id = ?", employeeID).
		Where("effective_to IS NULL").
		Update("effective_to", at.Format("2006-01-02")).Error
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID string) ([]WorkHourRequirement, error) {
	var reqs []WorkHourRequirement
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("effective_from DESC").
		Find(&reqs).Error
	return reqs, err
}
