package attendance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	attendanceerrors "go-timeclock/internal/attendance/errors"
	"go-timeclock/internal/events"
	"go-timeclock/internal/messaging/kafka"
	"go-timeclock/internal/shared/clock"
	"go-timeclock/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SourceManual      = "MANUAL"
	SourceMachine     = "MACHINE"
	SourceMachineSync = "MACHINE_SYNC"
	SourceIdleCredit  = "IDLE_CREDIT"
	SourceLeave       = "LEAVE"
)

// RequirementSource resolves the daily required hours in effect for an
// employee at a point in time. The value is snapshotted onto the record at
// creation and never re-queried for that day.
type RequirementSource interface {
	CurrentDailyHours(ctx context.Context, employeeID string, asOf time.Time) (float64, error)
}

// TaskStopper force-stops an employee's in-progress task timer when a
// machine punch stops the attendance timer.
type TaskStopper interface {
	StopActive(ctx context.Context, employeeID string) error
}

// Broadcaster pushes live updates to UI observers. Best-effort; failures are
// logged by the implementation and never fail a transition.
type Broadcaster interface {
	AttendanceUpdate(ctx context.Context, event events.AttendanceUpdateEvent)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	StartWork(ctx context.Context, employeeID string) (RecordResponse, error)
	PauseToBreak(ctx context.Context, employeeID string) (RecordResponse, error)
	StopTimer(ctx context.Context, employeeID string) (RecordResponse, error)
	Checkout(ctx context.Context, employeeID string) (RecordResponse, error)

	GetLiveStatus(ctx context.Context, employeeID string) (LiveStatusResponse, error)
	GetLiveElapsed(ctx context.Context, employeeID string) (LiveElapsedResponse, error)
	GetDailyStats(ctx context.Context, employeeID string) (DailyStatsResponse, error)

	DeviceToggle(ctx context.Context, employeeID string, recordTime time.Time) (RecordResponse, error)
	DeviceBatchApply(ctx context.Context, employeeID string, logTimes []time.Time) error

	CreditWork(ctx context.Context, employeeID string, day time.Time, seconds int64) (RecordResponse, error)
	MarkLeave(ctx context.Context, employeeID string, day time.Time) error
}

type service struct {
	db           *sql.DB
	repo         Repository
	requirements RequirementSource
	tasks        TaskStopper
	outbox       kafka.OutboxRepository
	broadcaster  Broadcaster
	clk          clock.Clock
	locks        *employeeLocks
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	requirements RequirementSource,
	tasks TaskStopper,
	outboxRepo kafka.OutboxRepository,
	broadcaster Broadcaster,
	clk clock.Clock,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if clk == nil {
		clk = clock.New()
	}
	return &service{
		db:           db,
		repo:         repo,
		requirements: requirements,
		tasks:        tasks,
		outbox:       outboxRepo,
		broadcaster:  broadcaster,
		clk:          clk,
		locks:        newEmployeeLocks(),
		logger:       l,
	}
}

func (s *service) StartWork(ctx context.Context, employeeID string) (RecordResponse, error) {
	return s.transition(ctx, employeeID, ActionStart, SourceManual)
}

func (s *service) PauseToBreak(ctx context.Context, employeeID string) (RecordResponse, error) {
	return s.transition(ctx, employeeID, ActionBreak, SourceManual)
}

func (s *service) StopTimer(ctx context.Context, employeeID string) (RecordResponse, error) {
	return s.transition(ctx, employeeID, ActionStop, SourceManual)
}

func (s *service) Checkout(ctx context.Context, employeeID string) (RecordResponse, error) {
	return s.transition(ctx, employeeID, ActionCheckout, SourceManual)
}

// transition runs one manual timer action as an atomic read-modify-write.
// The per-employee lock plus the transaction keep the status guard and the
// save consistent; a failed write discards the in-memory transition.
func (s *service) transition(ctx context.Context, employeeID string, action Action, source string) (RecordResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return RecordResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	unlock := s.locks.Lock(employeeID)
	defer unlock()

	now := s.clk.Now()
	today := DayOf(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition begin tx failed", zap.Error(err))
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	created := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("transition fetch record failed", zap.Error(err))
			return RecordResponse{}, err
		}
		if action != ActionStart {
			return RecordResponse{}, missingRecordError(action)
		}
		rec = s.newRecord(ctx, employeeID, today, now)
		created = true
	}

	if err := Apply(rec, action, now); err != nil {
		s.logger.Warn("transition rejected",
			zap.String("employee_id", employeeID),
			zap.String("action", string(action)),
			zap.String("status", string(rec.Status)),
			zap.Error(err),
		)
		return RecordResponse{}, err
	}

	if action == ActionCheckout {
		prevCumulative, err := s.previousCumulative(ctx, qtx, employeeID, today)
		if err != nil {
			return RecordResponse{}, err
		}
		ApplyShortage(rec, prevCumulative)
	}

	if err := s.persist(ctx, qtx, rec, created); err != nil {
		s.logger.Error("transition persist failed", zap.Error(err))
		return RecordResponse{}, mapRepositoryError(err)
	}

	event := s.updateEvent(ctx, rec, source)
	if err := s.queueUpdate(ctx, tx, rec, event); err != nil {
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition commit failed", zap.Error(err))
		return RecordResponse{}, err
	}

	s.broadcast(ctx, event)
	s.logger.Info("transition applied",
		zap.String("employee_id", employeeID),
		zap.String("action", string(action)),
		zap.String("status", string(rec.Status)),
		zap.Int64("work_seconds", rec.WorkSeconds),
		zap.Int64("break_seconds", rec.BreakSeconds),
	)

	return mapToResponse(*rec), nil
}

// DeviceToggle applies a biometric punch with toggle semantics: working
// flips to stopped (force-stopping any running task timer), everything else
// flips to working. Unlike the manual path, re-entry after checkout is
// permitted here so a straggler's evening scan still lands on today's
// record.
func (s *service) DeviceToggle(ctx context.Context, employeeID string, recordTime time.Time) (RecordResponse, error) {
	unlock := s.locks.Lock(employeeID)
	defer unlock()

	now := s.clk.Now()
	today := DayOf(now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	created := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return RecordResponse{}, err
		}
		// first scan of the day is always a check-in
		rec = s.newRecord(ctx, employeeID, today, recordTime)
		created = true
	}

	if !created && Debounced(rec.LastStatusChange, now) {
		return RecordResponse{}, attendanceerrors.ErrDebounced
	}

	stopTask := false
	switch rec.Status {
	case StatusWorking:
		if err := Apply(rec, ActionStop, recordTime); err != nil {
			return RecordResponse{}, err
		}
		stopTask = true
	case StatusLeave:
		return RecordResponse{}, attendanceerrors.ErrOnLeave
	default:
		if rec.Status == StatusCheckedOut {
			// biometric re-entry for stragglers: reopen the day, the next
			// checkout recomputes the shortage fields
			rec.Status = StatusStopped
		}
		if err := Apply(rec, ActionStart, recordTime); err != nil {
			return RecordResponse{}, err
		}
	}

	if err := s.persist(ctx, qtx, rec, created); err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	event := s.updateEvent(ctx, rec, SourceMachine)
	if err := s.queueUpdate(ctx, tx, rec, event); err != nil {
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	if stopTask && s.tasks != nil {
		if err := s.tasks.StopActive(ctx, employeeID); err != nil {
			s.logger.Error("force-stop task timer failed",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
		}
	}

	s.broadcast(ctx, event)
	s.logger.Info("device toggle applied",
		zap.String("employee_id", employeeID),
		zap.String("status", string(rec.Status)),
		zap.Time("record_time", recordTime),
	)

	return mapToResponse(*rec), nil
}

// DeviceBatchApply reconciles a day from the machine's log buffer. One log
// means the employee is still in: status working from that timestamp. Two or
// more mean the worked span is last-first, landing on stopped at the last
// log. Coarser than the real-time path on purpose; used only when real-time
// sync is disabled.
func (s *service) DeviceBatchApply(ctx context.Context, employeeID string, logTimes []time.Time) error {
	if len(logTimes) == 0 {
		return nil
	}

	unlock := s.locks.Lock(employeeID)
	defer unlock()

	sorted := make([]time.Time, len(logTimes))
	copy(sorted, logTimes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	first, last := sorted[0], sorted[len(sorted)-1]

	today := DayOf(s.clk.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByEmployeeAndDate(ctx, employeeID, today)
	created := false
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		rec = s.newRecord(ctx, employeeID, today, first)
		created = true
	}

	if rec.FirstCheckIn == nil || first.Before(*rec.FirstCheckIn) {
		t := first
		rec.FirstCheckIn = &t
	}

	if len(sorted) == 1 {
		rec.Status = StatusWorking
		t := first
		rec.LastStatusChange = &t
	} else {
		rec.WorkSeconds += int64(last.Sub(first).Seconds())
		rec.Status = StatusStopped
		t := last
		rec.LastStatusChange = &t
	}

	if err := s.persist(ctx, qtx, rec, created); err != nil {
		return mapRepositoryError(err)
	}

	event := s.updateEvent(ctx, rec, SourceMachineSync)
	if err := s.queueUpdate(ctx, tx, rec, event); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.broadcast(ctx, event)
	s.logger.Info("machine batch applied",
		zap.String("employee_id", employeeID),
		zap.Int("log_count", len(sorted)),
		zap.String("status", string(rec.Status)),
	)
	return nil
}

// CreditWork adds approved idle seconds to a day's work duration. This is
// the only mutation allowed after checkout; the record's own shortage
// fields are recomputed, later days are left untouched (no back-filling).
func (s *service) CreditWork(ctx context.Context, employeeID string, day time.Time, seconds int64) (RecordResponse, error) {
	if seconds <= 0 {
		return RecordResponse{}, attendanceerrors.ErrRecordNotFound
	}

	unlock := s.locks.Lock(employeeID)
	defer unlock()

	day = DayOf(day)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := qtx.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	rec.WorkSeconds += seconds
	if rec.Status == StatusCheckedOut {
		prevCumulative, err := s.previousCumulative(ctx, qtx, employeeID, day)
		if err != nil {
			return RecordResponse{}, err
		}
		ApplyShortage(rec, prevCumulative)
	}

	if err := qtx.Update(ctx, rec); err != nil {
		return RecordResponse{}, mapRepositoryError(err)
	}

	event := s.updateEvent(ctx, rec, SourceIdleCredit)
	if err := s.queueUpdate(ctx, tx, rec, event); err != nil {
		return RecordResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RecordResponse{}, err
	}

	s.broadcast(ctx, event)
	s.logger.Info("idle credit applied",
		zap.String("employee_id", employeeID),
		zap.String("day", day.Format("2006-01-02")),
		zap.Int64("seconds", seconds),
	)
	return mapToResponse(*rec), nil
}

// MarkLeave writes a terminal leave record for the day. Leave days carry a
// zero requirement so no shortage accrues.
func (s *service) MarkLeave(ctx context.Context, employeeID string, day time.Time) error {
	unlock := s.locks.Lock(employeeID)
	defer unlock()

	day = DayOf(day)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindByEmployeeAndDate(ctx, employeeID, day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if err == nil && existing.Status != StatusNone {
		return attendanceerrors.ErrDayHasActivity
	}

	now := s.clk.Now()
	rec := &Record{
		ID:               uuid.New(),
		EmployeeID:       uuid.MustParse(employeeID),
		RecordDate:       day,
		Status:           StatusLeave,
		RequiredHours:    0,
		LastStatusChange: &now,
	}
	if existing != nil {
		rec = existing
		rec.Status = StatusLeave
		rec.RequiredHours = 0
		rec.LastStatusChange = &now
	}

	if err := s.persist(ctx, qtx, rec, existing == nil); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("leave marked",
		zap.String("employee_id", employeeID),
		zap.String("day", day.Format("2006-01-02")),
	)
	return nil
}

func (s *service) GetLiveStatus(ctx context.Context, employeeID string) (LiveStatusResponse, error) {
	rec, err := s.todayRecord(ctx, employeeID)
	if err != nil {
		return LiveStatusResponse{}, err
	}
	if rec == nil {
		return LiveStatusResponse{Status: string(StatusNone)}, nil
	}
	return LiveStatusResponse{Status: string(rec.Status)}, nil
}

func (s *service) GetLiveElapsed(ctx context.Context, employeeID string) (LiveElapsedResponse, error) {
	rec, err := s.todayRecord(ctx, employeeID)
	if err != nil {
		return LiveElapsedResponse{}, err
	}
	if rec == nil {
		return LiveElapsedResponse{}, nil
	}
	return LiveElapsedResponse{
		ElapsedSeconds: OpenIntervalSeconds(rec, s.clk.Now()),
	}, nil
}

// GetDailyStats is the read-side companion of checkout: the same shortage
// formula against live work seconds, projected without persisting anything.
func (s *service) GetDailyStats(ctx context.Context, employeeID string) (DailyStatsResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return DailyStatsResponse{}, attendanceerrors.ErrInvalidEmployeeID
	}

	now := s.clk.Now()
	today := DayOf(now)

	rec, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return DailyStatsResponse{}, err
	}

	prevCumulative, perr := s.previousCumulative(ctx, s.repo, employeeID, today)
	if perr != nil {
		return DailyStatsResponse{}, perr
	}

	if rec == nil || errors.Is(err, sql.ErrNoRows) {
		requiredHours, rerr := s.requirements.CurrentDailyHours(ctx, employeeID, now)
		if rerr != nil {
			requiredHours = DefaultDailyRequiredHours
		}
		return DailyStatsResponse{
			RemainingBreakSeconds: MaxBreakSecondsPerDay,
			RequiredSeconds:       int64(requiredHours * 3600),
			CumulativeShortage:    prevCumulative,
		}, nil
	}

	workSeconds, breakSeconds := LiveTotals(rec, now)
	requiredSeconds := int64(rec.RequiredHours * 3600)

	cumulative := prevCumulative + float64(requiredSeconds-workSeconds)/3600
	if rec.Status == StatusCheckedOut && rec.CumulativeShortage != nil {
		cumulative = *rec.CumulativeShortage
	}

	remaining := MaxBreakSecondsPerDay - breakSeconds
	if remaining < 0 {
		remaining = 0
	}

	return DailyStatsResponse{
		WorkSeconds:           workSeconds,
		BreakSeconds:          breakSeconds,
		RemainingBreakSeconds: remaining,
		RequiredSeconds:       requiredSeconds,
		CumulativeShortage:    cumulative,
	}, nil
}

// newRecord is the single place a day's record comes into existence: lazily,
// on the first status-affecting action, with the requirement snapshot taken
// at creation time.
func (s *service) newRecord(ctx context.Context, employeeID string, day, firstTouch time.Time) *Record {
	requiredHours, err := s.requirements.CurrentDailyHours(ctx, employeeID, firstTouch)
	if err != nil {
		s.logger.Warn("no work-hour requirement found, using default",
			zap.String("employee_id", employeeID),
			zap.Float64("default_hours", DefaultDailyRequiredHours),
			zap.Error(err),
		)
		requiredHours = DefaultDailyRequiredHours
	}

	return &Record{
		ID:            uuid.New(),
		EmployeeID:    uuid.MustParse(employeeID),
		RecordDate:    day,
		Status:        StatusNone,
		RequiredHours: requiredHours,
	}
}

func (s *service) todayRecord(ctx context.Context, employeeID string) (*Record, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, attendanceerrors.ErrInvalidEmployeeID
	}
	rec, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, DayOf(s.clk.Now()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func (s *service) previousCumulative(ctx context.Context, repo Repository, employeeID string, day time.Time) (float64, error) {
	prev, err := repo.FindLatestBefore(ctx, employeeID, day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	if prev.CumulativeShortage == nil {
		return 0, nil
	}
	return *prev.CumulativeShortage, nil
}

func (s *service) persist(ctx context.Context, repo Repository, rec *Record, created bool) error {
	if created {
		return repo.Create(ctx, rec)
	}
	return repo.Update(ctx, rec)
}

func (s *service) updateEvent(ctx context.Context, rec *Record, source string) events.AttendanceUpdateEvent {
	changedAt := s.clk.Now()
	if rec.LastStatusChange != nil {
		changedAt = *rec.LastStatusChange
	}
	return events.AttendanceUpdateEvent{
		EventType:       "attendance_update",
		RequestID:       contextutil.GetRequestID(ctx),
		EmployeeID:      rec.EmployeeID.String(),
		Status:          string(rec.Status),
		Source:          source,
		StatusChangedAt: changedAt,
	}
}

// queueUpdate writes the transition event to the outbox inside the same
// transaction, so observers never see an update for a write that rolled
// back.
func (s *service) queueUpdate(ctx context.Context, tx *sql.Tx, rec *Record, event events.AttendanceUpdateEvent) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal attendance event failed", zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "attendance_record",
		AggregateID:   rec.ID.String(),
		EventType:     event.EventType,
		Topic:         events.AttendanceUpdateTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("attendance outbox persist failed",
			zap.String("record_id", rec.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) broadcast(ctx context.Context, event events.AttendanceUpdateEvent) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.AttendanceUpdate(ctx, event)
}

func missingRecordError(action Action) error {
	switch action {
	case ActionBreak:
		return attendanceerrors.ErrNotWorking
	case ActionCheckout:
		return attendanceerrors.ErrNoRecordToday
	default:
		return attendanceerrors.ErrNoActiveSession
	}
}

func mapToResponse(rec Record) RecordResponse {
	resp := RecordResponse{
		ID:            rec.ID.String(),
		EmployeeID:    rec.EmployeeID.String(),
		RecordDate:    rec.RecordDate.Format("2006-01-02"),
		Status:        string(rec.Status),
		WorkSeconds:   rec.WorkSeconds,
		BreakSeconds:  rec.BreakSeconds,
		RequiredHours: rec.RequiredHours,
	}
	if rec.FirstCheckIn != nil {
		v := rec.FirstCheckIn.Format(time.RFC3339)
		resp.FirstCheckIn = &v
	}
	if rec.LastCheckOut != nil {
		v := rec.LastCheckOut.Format(time.RFC3339)
		resp.LastCheckOut = &v
	}
	if rec.LastStatusChange != nil {
		v := rec.LastStatusChange.Format(time.RFC3339)
		resp.LastStatusChange = &v
	}
	resp.HoursShortage = rec.HoursShortage
	resp.CumulativeShortage = rec.CumulativeShortage
	return resp
}
