package task

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=task_repo.go -destination=mock/task_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, t *TaskTimer) error
	Update(ctx context.Context, t *TaskTimer) error
	FindRunningByEmployee(ctx context.Context, employeeID string) (*TaskTimer, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]TaskTimer, error)
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

func (r *repository) Create(ctx context.Context, t *TaskTimer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) Update(ctx context.Context, t *TaskTimer) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) FindRunningByEmployee(ctx context.Context, employeeID string) (*TaskTimer, error) {
	var t TaskTimer
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("stopped_at IS NULL").
		Order("started_at DESC").
		First(&t).Error
	return &t, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]TaskTimer, error) {
	var timers []TaskTimer
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("started_at DESC").
		Find(&timers).Error
	return timers, err
}
