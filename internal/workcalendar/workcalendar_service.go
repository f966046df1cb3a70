package workcalendar

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	workcalendarerrors "go-timeclock/internal/workcalendar/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const settingsKeyPrefix = "workcalendar:settings:"

func settingsCacheKey(day time.Time) string {
	return settingsKeyPrefix + day.Format("2006-01-02")
}

//go:generate mockgen -source=workcalendar_service.go -destination=mock/workcalendar_service_mock.go -package=mock
type Service interface {
	// SettingsAsOf resolves the settings version in effect for a date.
	// Deterministic for historical dates: later edits never change the
	// answer for days before their effective_from.
	SettingsAsOf(ctx context.Context, day time.Time) (*Settings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	HolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
	// IsWorkingDay applies the weekly-off set and holiday list effective
	// for the given date.
	IsWorkingDay(ctx context.Context, day time.Time) (bool, error)
}

type service struct {
	gdb    *gorm.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(gdb *gorm.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("workcalendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workcalendar.service")
	}
	return &service{
		gdb:    gdb,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) SettingsAsOf(ctx context.Context, day time.Time) (*Settings, error) {
	cacheKey := settingsCacheKey(day)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var settings Settings
			if json.Unmarshal([]byte(cached), &settings) == nil {
				return &settings, nil
			}
		}
	}

	// every dashboard poll resolves today's settings; collapse the stampede
	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		settings, err := s.repo.FindSettingsAsOf(ctx, day)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, workcalendarerrors.ErrSettingsNotFound
			}
			return nil, err
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(settings); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, time.Hour)
			}
		}
		return settings, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Settings), nil
}

func (s *service) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error) {
	for _, d := range req.WeeklyOffDays {
		if d < 0 || d > 6 {
			return SettingsResponse{}, workcalendarerrors.ErrInvalidWeeklyOffDays
		}
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return SettingsResponse{}, workcalendarerrors.ErrInvalidDate
	}

	row := &Settings{
		ID:            uuid.New(),
		WeeklyOffDays: joinDays(req.WeeklyOffDays),
		MachineHost:   req.MachineHost,
		MachinePort:   req.MachinePort,
		RealTimeSync:  req.RealTimeSync,
		EffectiveFrom: effectiveFrom,
	}

	err = s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)
		if err := qtx.CloseActiveSettings(ctx, effectiveFrom); err != nil {
			return err
		}
		return qtx.CreateSettings(ctx, row)
	})
	if err != nil {
		s.logger.Error("update settings failed", zap.Error(err))
		return SettingsResponse{}, err
	}

	if s.rdb != nil {
		// drop cached entries for today onward; past dates stay valid
		cacheKey := settingsCacheKey(time.Now())
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate settings cache",
				zap.Error(err),
				zap.String("key", cacheKey),
			)
		}
	}

	s.logger.Info("settings version created",
		zap.String("effective_from", req.EffectiveFrom),
		zap.Bool("real_time_sync", req.RealTimeSync),
	)
	return mapSettingsResponse(*row), nil
}

func (s *service) CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, workcalendarerrors.ErrInvalidDate
	}

	now := time.Now()
	row := &Holiday{
		ID:            uuid.New(),
		Name:          req.Name,
		HolidayDate:   date,
		EffectiveFrom: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}
	if err := s.repo.CreateHoliday(ctx, row); err != nil {
		s.logger.Error("create holiday failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	s.logger.Info("holiday created",
		zap.String("name", req.Name),
		zap.String("date", req.Date),
	)
	return mapHolidayResponse(*row), nil
}

func (s *service) HolidaysBetween(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	return s.repo.FindHolidaysBetween(ctx, from, to)
}

func (s *service) IsWorkingDay(ctx context.Context, day time.Time) (bool, error) {
	settings, err := s.SettingsAsOf(ctx, day)
	if err != nil {
		return false, err
	}
	if settings.WeeklyOff()[day.Weekday()] {
		return false, nil
	}

	holidays, err := s.repo.FindHolidaysBetween(ctx, day, day)
	if err != nil {
		return false, err
	}
	return len(holidays) == 0, nil
}

func joinDays(days []int) string {
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func mapSettingsResponse(s Settings) SettingsResponse {
	days := make([]int, 0, 2)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.WeeklyOff()[d] {
			days = append(days, int(d))
		}
	}

	resp := SettingsResponse{
		ID:            s.ID.String(),
		WeeklyOffDays: days,
		MachineHost:   s.MachineHost,
		MachinePort:   s.MachinePort,
		RealTimeSync:  s.RealTimeSync,
		EffectiveFrom: s.EffectiveFrom.Format("2006-01-02"),
	}
	if s.EffectiveTo != nil {
		v := s.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &v
	}
	return resp
}

func mapHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:            h.ID.String(),
		Name:          h.Name,
		Date:          h.HolidayDate.Format("2006-01-02"),
		EffectiveFrom: h.EffectiveFrom.Format("2006-01-02"),
	}
}
