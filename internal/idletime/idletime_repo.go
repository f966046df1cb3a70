package idletime

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=idletime_repo.go -destination=mock/idletime_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *IdleRequest) error
	FindByID(ctx context.Context, id string) (*IdleRequest, error)
	Update(ctx context.Context, req *IdleRequest) error
	FindByEmployee(ctx context.Context, employeeID string) ([]IdleRequest, error)
	FindPending(ctx context.Context) ([]IdleRequest, error)
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

func (r *repository) Create(ctx context.Context, req *IdleRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*IdleRequest, error) {
	var req IdleRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	return &req, err
}

func (r *repository) Update(ctx context.Context, req *IdleRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]IdleRequest, error) {
	var reqs []IdleRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("request_date DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindPending(ctx context.Context) ([]IdleRequest, error) {
	var reqs []IdleRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}
