package attendance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-timeclock/internal/attendance"
	attendanceerrors "go-timeclock/internal/attendance/errors"
	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/shared/clock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeAttendanceRepository struct {
	withTxFn                func(tx *sql.Tx) attendance.Repository
	createFn                func(ctx context.Context, rec *attendance.Record) error
	updateFn                func(ctx context.Context, rec *attendance.Record) error
	findByEmployeeAndDateFn func(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error)
	findLatestBeforeFn      func(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error)
	findRangeFn             func(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error)
	findAllByDateFn         func(ctx context.Context, date time.Time) ([]attendance.Record, error)
}

func (f *fakeAttendanceRepository) WithTx(tx *sql.Tx) attendance.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeAttendanceRepository) Create(ctx context.Context, rec *attendance.Record) error {
	if f.createFn != nil {
		return f.createFn(ctx, rec)
	}
	return nil
}

func (f *fakeAttendanceRepository) Update(ctx context.Context, rec *attendance.Record) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, rec)
	}
	return nil
}

func (f *fakeAttendanceRepository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if f.findByEmployeeAndDateFn != nil {
		return f.findByEmployeeAndDateFn(ctx, employeeID, date)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceRepository) FindLatestBefore(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if f.findLatestBeforeFn != nil {
		return f.findLatestBeforeFn(ctx, employeeID, date)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAttendanceRepository) FindRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	if f.findRangeFn != nil {
		return f.findRangeFn(ctx, employeeID, from, to)
	}
	return nil, nil
}

func (f *fakeAttendanceRepository) FindAllByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	if f.findAllByDateFn != nil {
		return f.findAllByDateFn(ctx, date)
	}
	return nil, nil
}

type fakeRequirementSource struct {
	hours float64
	err   error
}

func (f *fakeRequirementSource) CurrentDailyHours(ctx context.Context, employeeID string, asOf time.Time) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.hours, nil
}

type fakeTaskStopper struct {
	stopped []string
	err     error
}

func (f *fakeTaskStopper) StopActive(ctx context.Context, employeeID string) error {
	f.stopped = append(f.stopped, employeeID)
	return f.err
}

type fakeBroadcaster struct {
	updates []events.AttendanceUpdateEvent
}

func (f *fakeBroadcaster) AttendanceUpdate(ctx context.Context, event events.AttendanceUpdateEvent) {
	f.updates = append(f.updates, event)
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type attendanceServiceDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	service     attendance.Service
	repo        *fakeAttendanceRepository
	reqs        *fakeRequirementSource
	tasks       *fakeTaskStopper
	outbox      *fakeOutboxRepository
	broadcaster *fakeBroadcaster
	clk         *clock.Fake
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func setupAttendanceServiceTest(t *testing.T) *attendanceServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeAttendanceRepository{}
	reqs := &fakeRequirementSource{hours: 8}
	tasks := &fakeTaskStopper{}
	outbox := &fakeOutboxRepository{}
	broadcaster := &fakeBroadcaster{}
	clk := clock.NewFake(testNow)

	svc := attendance.NewService(db, repo, reqs, tasks, outbox, broadcaster, clk)

	return &attendanceServiceDeps{
		db:          db,
		sqlMock:     sqlMock,
		service:     svc,
		repo:        repo,
		reqs:        reqs,
		tasks:       tasks,
		outbox:      outbox,
		broadcaster: broadcaster,
		clk:         clk,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestAttendanceService_StartWork(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("creates record lazily with requirement snapshot", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.reqs.hours = 7.5
		var created *attendance.Record
		deps.repo.createFn = func(ctx context.Context, rec *attendance.Record) error {
			created = rec
			return nil
		}

		resp, err := deps.service.StartWork(ctx, employeeID)

		assert.NoError(t, err)
		assert.Equal(t, string(attendance.StatusWorking), resp.Status)
		assert.NotNil(t, created)
		assert.Equal(t, 7.5, created.RequiredHours)
		assert.NotNil(t, created.FirstCheckIn)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.AttendanceUpdateTopic, deps.outbox.created[0].Topic)
		assert.Len(t, deps.broadcaster.updates, 1)
		assert.Equal(t, attendance.SourceManual, deps.broadcaster.updates[0].Source)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative already working", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:         uuid.New(),
				EmployeeID: uuid.MustParse(employeeID),
				RecordDate: date,
				Status:     attendance.StatusWorking,
			}, nil
		}

		_, err := deps.service.StartWork(ctx, employeeID)

		assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyWorking)
		assert.Empty(t, deps.broadcaster.updates)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid employee id", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.StartWork(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, attendanceerrors.ErrInvalidEmployeeID)
	})
}

func TestAttendanceService_Checkout(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("computes shortage with prior cumulative", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		lsc := testNow.Add(-time.Hour)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:               uuid.New(),
				EmployeeID:       uuid.MustParse(employeeID),
				RecordDate:       date,
				Status:           attendance.StatusWorking,
				WorkSeconds:      21600, // 6h flushed
				RequiredHours:    8,
				LastStatusChange: &lsc, // 1h still open
			}, nil
		}
		prevCum := -0.5
		deps.repo.findLatestBeforeFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{CumulativeShortage: &prevCum}, nil
		}

		var saved *attendance.Record
		deps.repo.updateFn = func(ctx context.Context, rec *attendance.Record) error {
			saved = rec
			return nil
		}

		resp, err := deps.service.Checkout(ctx, employeeID)

		assert.NoError(t, err)
		assert.Equal(t, string(attendance.StatusCheckedOut), resp.Status)
		assert.Equal(t, int64(25200), saved.WorkSeconds)
		assert.InDelta(t, 1.0, *saved.HoursShortage, 1e-9)
		assert.InDelta(t, 0.5, *saved.CumulativeShortage, 1e-9)
		assert.NotNil(t, saved.LastCheckOut)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative no record today", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Checkout(ctx, employeeID)

		assert.ErrorIs(t, err, attendanceerrors.ErrNoRecordToday)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative second checkout rejected", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:         uuid.New(),
				EmployeeID: uuid.MustParse(employeeID),
				RecordDate: date,
				Status:     attendance.StatusCheckedOut,
			}, nil
		}

		_, err := deps.service.Checkout(ctx, employeeID)

		assert.ErrorIs(t, err, attendanceerrors.ErrNoActiveSession)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_DeviceToggle(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("first scan creates working record", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		var created *attendance.Record
		deps.repo.createFn = func(ctx context.Context, rec *attendance.Record) error {
			created = rec
			return nil
		}

		punchAt := testNow.Add(-10 * time.Minute)
		resp, err := deps.service.DeviceToggle(ctx, employeeID, punchAt)

		assert.NoError(t, err)
		assert.Equal(t, string(attendance.StatusWorking), resp.Status)
		assert.Equal(t, punchAt, *created.FirstCheckIn)
		assert.Empty(t, deps.tasks.stopped)
		assert.Len(t, deps.broadcaster.updates, 1)
		assert.Equal(t, attendance.SourceMachine, deps.broadcaster.updates[0].Source)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("working flips to stopped and force-stops task", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		lsc := testNow.Add(-2 * time.Hour)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:               uuid.New(),
				EmployeeID:       uuid.MustParse(employeeID),
				RecordDate:       date,
				Status:           attendance.StatusWorking,
				LastStatusChange: &lsc,
			}, nil
		}

		resp, err := deps.service.DeviceToggle(ctx, employeeID, testNow)

		assert.NoError(t, err)
		assert.Equal(t, string(attendance.StatusStopped), resp.Status)
		assert.Equal(t, int64(7200), resp.WorkSeconds)
		assert.Equal(t, []string{employeeID}, deps.tasks.stopped)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("checked-out scan reopens the day", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		lsc := testNow.Add(-3 * time.Hour)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:               uuid.New(),
				EmployeeID:       uuid.MustParse(employeeID),
				RecordDate:       date,
				Status:           attendance.StatusCheckedOut,
				WorkSeconds:      14400,
				LastStatusChange: &lsc,
			}, nil
		}

		resp, err := deps.service.DeviceToggle(ctx, employeeID, testNow)

		assert.NoError(t, err)
		assert.Equal(t, string(attendance.StatusWorking), resp.Status)
		// No elapsed time accrues across the checked-out gap.
		assert.Equal(t, int64(14400), resp.WorkSeconds)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative second punch inside debounce window", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		lsc := testNow.Add(-500 * time.Millisecond)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:               uuid.New(),
				EmployeeID:       uuid.MustParse(employeeID),
				RecordDate:       date,
				Status:           attendance.StatusWorking,
				LastStatusChange: &lsc,
			}, nil
		}

		_, err := deps.service.DeviceToggle(ctx, employeeID, testNow)

		assert.ErrorIs(t, err, attendanceerrors.ErrDebounced)
		assert.Empty(t, deps.broadcaster.updates)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_DeviceBatchApply(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("single log means still working", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		punch := time.Date(2026, 3, 2, 8, 30, 0, 0, time.Local)
		var created *attendance.Record
		deps.repo.createFn = func(ctx context.Context, rec *attendance.Record) error {
			created = rec
			return nil
		}

		err := deps.service.DeviceBatchApply(ctx, employeeID, []time.Time{punch})

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusWorking, created.Status)
		assert.Equal(t, punch, *created.FirstCheckIn)
		assert.Zero(t, created.WorkSeconds)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("multiple logs span first to last", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		first := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
		mid := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)
		last := time.Date(2026, 3, 2, 17, 0, 0, 0, time.Local)

		var created *attendance.Record
		deps.repo.createFn = func(ctx context.Context, rec *attendance.Record) error {
			created = rec
			return nil
		}

		// Deliberately unsorted input.
		err := deps.service.DeviceBatchApply(ctx, employeeID, []time.Time{mid, last, first})

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusStopped, created.Status)
		assert.Equal(t, int64(8*3600), created.WorkSeconds)
		assert.Equal(t, first, *created.FirstCheckIn)
		assert.Equal(t, last, *created.LastStatusChange)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		err := deps.service.DeviceBatchApply(ctx, employeeID, nil)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_CreditWork(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)

	t.Run("recomputes shortage after checkout", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		shortage := 1.0
		cumulative := 1.0
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:                 uuid.New(),
				EmployeeID:         uuid.MustParse(employeeID),
				RecordDate:         date,
				Status:             attendance.StatusCheckedOut,
				WorkSeconds:        25200,
				RequiredHours:      8,
				HoursShortage:      &shortage,
				CumulativeShortage: &cumulative,
			}, nil
		}

		var saved *attendance.Record
		deps.repo.updateFn = func(ctx context.Context, rec *attendance.Record) error {
			saved = rec
			return nil
		}

		resp, err := deps.service.CreditWork(ctx, employeeID, day, 3600)

		assert.NoError(t, err)
		assert.Equal(t, int64(28800), saved.WorkSeconds)
		assert.InDelta(t, 0.0, *saved.HoursShortage, 1e-9)
		assert.Equal(t, string(attendance.StatusCheckedOut), resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative missing record", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return nil, sql.ErrNoRows
		}

		_, err := deps.service.CreditWork(ctx, employeeID, day, 3600)

		assert.ErrorIs(t, err, attendanceerrors.ErrRecordNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_MarkLeave(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local)

	t.Run("creates leave record with zero requirement", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		var created *attendance.Record
		deps.repo.createFn = func(ctx context.Context, rec *attendance.Record) error {
			created = rec
			return nil
		}

		err := deps.service.MarkLeave(ctx, employeeID, day)

		assert.NoError(t, err)
		assert.Equal(t, attendance.StatusLeave, created.Status)
		assert.Zero(t, created.RequiredHours)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative day already has activity", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:         uuid.New(),
				EmployeeID: uuid.MustParse(employeeID),
				RecordDate: date,
				Status:     attendance.StatusWorking,
			}, nil
		}

		err := deps.service.MarkLeave(ctx, employeeID, day)

		assert.ErrorIs(t, err, attendanceerrors.ErrDayHasActivity)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestAttendanceService_GetDailyStats(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("projects live shortage", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		lsc := testNow.Add(-time.Hour)
		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{
				ID:               uuid.New(),
				EmployeeID:       uuid.MustParse(employeeID),
				RecordDate:       date,
				Status:           attendance.StatusWorking,
				WorkSeconds:      10800,
				BreakSeconds:     600,
				RequiredHours:    8,
				LastStatusChange: &lsc,
			}, nil
		}
		prev := 2.0
		deps.repo.findLatestBeforeFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return &attendance.Record{CumulativeShortage: &prev}, nil
		}

		stats, err := deps.service.GetDailyStats(ctx, employeeID)

		assert.NoError(t, err)
		assert.Equal(t, int64(14400), stats.WorkSeconds) // 3h stored + 1h live
		assert.Equal(t, int64(600), stats.BreakSeconds)
		assert.Equal(t, int64(3000), stats.RemainingBreakSeconds)
		assert.Equal(t, int64(28800), stats.RequiredSeconds)
		// 2.0 carried + (8h - 4h live)/1h
		assert.InDelta(t, 6.0, stats.CumulativeShortage, 1e-9)
	})

	t.Run("no record today falls back to requirement", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.reqs.hours = 6

		stats, err := deps.service.GetDailyStats(ctx, employeeID)

		assert.NoError(t, err)
		assert.Zero(t, stats.WorkSeconds)
		assert.Equal(t, int64(attendance.MaxBreakSecondsPerDay), stats.RemainingBreakSeconds)
		assert.Equal(t, int64(21600), stats.RequiredSeconds)
	})

	t.Run("negative repo error", func(t *testing.T) {
		deps := setupAttendanceServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByEmployeeAndDateFn = func(ctx context.Context, eid string, date time.Time) (*attendance.Record, error) {
			return nil, errors.New("db down")
		}

		_, err := deps.service.GetDailyStats(ctx, employeeID)

		assert.Error(t, err)
	})
}
