package report_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/report"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/workcalendar"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRecordStore struct {
	rangeFn     func(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error)
	allByDateFn func(ctx context.Context, date time.Time) ([]attendance.Record, error)
}

func (f *fakeRecordStore) WithTx(tx *sql.Tx) attendance.Repository { return f }
func (f *fakeRecordStore) Create(ctx context.Context, rec *attendance.Record) error {
	return nil
}
func (f *fakeRecordStore) Update(ctx context.Context, rec *attendance.Record) error {
	return nil
}
func (f *fakeRecordStore) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeRecordStore) FindLatestBefore(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeRecordStore) FindRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	if f.rangeFn != nil {
		return f.rangeFn(ctx, employeeID, from, to)
	}
	return nil, nil
}
func (f *fakeRecordStore) FindAllByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	if f.allByDateFn != nil {
		return f.allByDateFn(ctx, date)
	}
	return nil, nil
}

type fakeCalendar struct {
	workcalendar.Service

	workingFn func(ctx context.Context, day time.Time) (bool, error)
}

func (f *fakeCalendar) IsWorkingDay(ctx context.Context, day time.Time) (bool, error) {
	if f.workingFn != nil {
		return f.workingFn(ctx, day)
	}
	return true, nil
}

var reportNow = time.Date(2026, 3, 6, 12, 0, 0, 0, time.Local)

func dayRecord(employeeID uuid.UUID, day time.Time, status attendance.Status, workSecs int64) attendance.Record {
	return attendance.Record{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		RecordDate:  day,
		Status:      status,
		WorkSeconds: workSecs,
	}
}

func TestRangeSummary(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	// Mon Mar 2 .. Fri Mar 6 2026, with Wednesday a holiday.
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 6, 0, 0, 0, 0, time.Local)
	wednesday := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)

	t.Run("sums stored durations and walks working days", func(t *testing.T) {
		shortMon := 1.0
		cumFri := 1.5
		records := []attendance.Record{
			dayRecord(employeeID, from, attendance.StatusCheckedOut, 25200),
			dayRecord(employeeID, from.AddDate(0, 0, 1), attendance.StatusCheckedOut, 28800),
			dayRecord(employeeID, to, attendance.StatusCheckedOut, 28800),
		}
		records[0].HoursShortage = &shortMon
		records[2].CumulativeShortage = &cumFri

		store := &fakeRecordStore{
			rangeFn: func(ctx context.Context, eid string, f, t time.Time) ([]attendance.Record, error) {
				return records, nil
			},
		}
		calendar := &fakeCalendar{
			workingFn: func(ctx context.Context, day time.Time) (bool, error) {
				return !day.Equal(wednesday), nil
			},
		}

		svc := report.NewService(store, calendar, clock.NewFake(reportNow))
		resp, err := svc.RangeSummary(ctx, employeeID.String(), from, to)

		assert.NoError(t, err)
		assert.Equal(t, int64(25200+28800+28800), resp.TotalWorkSeconds)
		assert.Equal(t, 4, resp.WorkingDays) // holiday excluded
		assert.Equal(t, 3, resp.DaysPresent) // Thursday absent
		assert.InDelta(t, 75.0, resp.AttendancePercentage, 1e-9)
		assert.InDelta(t, 1.0, resp.TotalShortageHours, 1e-9)
		assert.InDelta(t, 1.5, resp.CumulativeShortage, 1e-9)
	})

	t.Run("leave days count as present, not as work", func(t *testing.T) {
		records := []attendance.Record{
			dayRecord(employeeID, from, attendance.StatusLeave, 0),
		}
		store := &fakeRecordStore{
			rangeFn: func(ctx context.Context, eid string, f, t time.Time) ([]attendance.Record, error) {
				return records, nil
			},
		}

		svc := report.NewService(store, &fakeCalendar{}, clock.NewFake(reportNow))
		resp, err := svc.RangeSummary(ctx, employeeID.String(), from, from)

		assert.NoError(t, err)
		assert.Equal(t, 1, resp.LeaveDays)
		assert.Equal(t, 1, resp.DaysPresent)
		assert.Zero(t, resp.TotalWorkSeconds)
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		svc := report.NewService(&fakeRecordStore{}, &fakeCalendar{}, clock.NewFake(reportNow))

		_, err := svc.RangeSummary(ctx, "nope", from, to)

		assert.Error(t, err)
	})
}

func TestDailyOverview(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("live-adjusts only today", func(t *testing.T) {
		today := attendance.DayOf(reportNow)
		lsc := reportNow.Add(-30 * time.Minute)
		rec := dayRecord(employeeID, today, attendance.StatusWorking, 3600)
		rec.LastStatusChange = &lsc

		store := &fakeRecordStore{
			allByDateFn: func(ctx context.Context, date time.Time) ([]attendance.Record, error) {
				return []attendance.Record{rec}, nil
			},
		}

		svc := report.NewService(store, &fakeCalendar{}, clock.NewFake(reportNow))
		resp, err := svc.DailyOverview(ctx, today)

		assert.NoError(t, err)
		assert.Len(t, resp.Records, 1)
		assert.Equal(t, int64(3600+1800), resp.Records[0].WorkSeconds)
	})

	t.Run("historical day reports stored values", func(t *testing.T) {
		day := attendance.DayOf(reportNow).AddDate(0, 0, -1)
		lsc := reportNow.Add(-25 * time.Hour)
		rec := dayRecord(employeeID, day, attendance.StatusWorking, 3600)
		rec.LastStatusChange = &lsc

		store := &fakeRecordStore{
			allByDateFn: func(ctx context.Context, date time.Time) ([]attendance.Record, error) {
				return []attendance.Record{rec}, nil
			},
		}

		svc := report.NewService(store, &fakeCalendar{}, clock.NewFake(reportNow))
		resp, err := svc.DailyOverview(ctx, day)

		assert.NoError(t, err)
		assert.Equal(t, int64(3600), resp.Records[0].WorkSeconds)
	})
}
