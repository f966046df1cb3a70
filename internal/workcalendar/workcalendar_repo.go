package workcalendar

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=workcalendar_repo.go -destination=mock/workcalendar_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSettings(ctx context.Context, s *Settings) error
	CloseActiveSettings(ctx context.Context, at time.Time) error
	FindSettingsAsOf(ctx context.Context, at time.Time) (*Settings, error)
	CreateHoliday(ctx context.Context, h *Holiday) error
	FindHolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
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

func (r *repository) CreateSettings(ctx context.Context, s *Settings) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) CloseActiveSettings(ctx context.Context, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Settings{}).
		Where("effective_to IS NULL").
		Update("effective_to", at.Format("2006-01-02")).Error
}

func (r *repository) FindSettingsAsOf(ctx context.Context, at time.Time) (*Settings, error) {
	var s Settings
	err := r.db.WithContext(ctx).
		Where("effective_from <= ?", at.Format("2006-01-02")).
		Where("effective_to IS NULL OR effective_to > ?", at.Format("2006-01-02")).
		Order("effective_from DESC").
		First(&s).Error
	return &s, err
}

func (r *repository) CreateHoliday(ctx context.Context, h *Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

// FindHolidaysBetween honors effective dating: a holiday only counts for
// dates on or after its effective_from.
func (r *repository) FindHolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	var holidays []Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Where("effective_from <= holiday_date").
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}
